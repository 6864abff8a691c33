package widgets_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
	"github.com/sarchlab/gohdl/widgets"
)

// tick toggles clk high then low, settling the graph after each edge,
// mirroring the add_clock/wait_clock_cycle! pattern from the upstream
// fixtures without needing the full sim kernel for these unit tests.
func tick(uut circuit.Node, clk *signal.Signal) {
	clk.NextBool(true)
	for uut.UpdateAll() {
	}
	clk.NextBool(false)
	for uut.UpdateAll() {
	}
}

var _ = Describe("Shot", func() {
	It("stays active for the configured number of cycles then fires once", func() {
		var alloc signal.IDAllocator
		uut := widgets.NewShot(&alloc, 8, 3)
		uut.ConnectAll()

		uut.Trigger.NextBool(true)
		uut.Trigger.Commit()
		tick(uut, uut.Clock) // this edge arms state; Active (registered) is still low
		Expect(uut.Active.Val().Bool()).To(BeFalse())

		uut.Trigger.NextBool(false)
		uut.Trigger.Commit()
		tick(uut, uut.Clock) // next edge: Active now mirrors the armed state
		Expect(uut.Active.Val().Bool()).To(BeTrue())

		fired := false
		for i := 0; i < 10 && !fired; i++ {
			tick(uut, uut.Clock)
			if uut.Fired.Val().Bool() {
				fired = true
			}
		}
		Expect(fired).To(BeTrue())
		Expect(uut.Active.Val().Bool()).To(BeFalse())
	})
})

var _ = Describe("SyncFIFO", func() {
	It("fills then drains in FIFO order", func() {
		var alloc signal.IDAllocator
		uut := widgets.NewSyncFIFO(&alloc, 8, 4)
		uut.ConnectAll()

		for i := uint64(0); i < 4; i++ {
			uut.DataIn.SetNext(bitvec.FromUint64(8, i))
			uut.Write.NextBool(true)
			uut.DataIn.Commit()
			uut.Write.Commit()
			tick(uut, uut.Clock)
		}
		uut.Write.NextBool(false)
		uut.Write.Commit()
		for uut.UpdateAll() {
		}
		Expect(uut.Full.Val().Bool()).To(BeTrue())
		Expect(uut.Overflow.Val().Bool()).To(BeFalse())

		for i := uint64(0); i < 4; i++ {
			Expect(uut.Empty.Val().Bool()).To(BeFalse())
			Expect(uut.DataOut.Val().ToUint64()).To(Equal(i))
			uut.Read.NextBool(true)
			uut.Read.Commit()
			tick(uut, uut.Clock)
			uut.Read.NextBool(false)
			uut.Read.Commit()
			for uut.UpdateAll() {
			}
		}
		Expect(uut.Empty.Val().Bool()).To(BeTrue())
		Expect(uut.Underflow.Val().Bool()).To(BeFalse())
	})

	It("latches overflow when written while full", func() {
		var alloc signal.IDAllocator
		uut := widgets.NewSyncFIFO(&alloc, 4, 1)
		uut.ConnectAll()

		uut.DataIn.SetNext(bitvec.FromUint64(4, 1))
		uut.Write.NextBool(true)
		uut.DataIn.Commit()
		uut.Write.Commit()
		tick(uut, uut.Clock)
		tick(uut, uut.Clock)

		Expect(uut.Overflow.Val().Bool()).To(BeTrue())
	})
})

var _ = Describe("Synchronizer", func() {
	It("propagates In to Out after two DestClock edges", func() {
		var alloc signal.IDAllocator
		uut := widgets.NewSynchronizer(&alloc, "dest")
		uut.ConnectAll()

		uut.In.NextBool(true)
		uut.In.Commit()

		tick(uut, uut.DestClock)
		Expect(uut.Out.Val().Bool()).To(BeFalse())

		tick(uut, uut.DestClock)
		Expect(uut.Out.Val().Bool()).To(BeTrue())
	})
})
