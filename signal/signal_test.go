package signal_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/check"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
)

var _ = Describe("Signal", func() {
	var alloc signal.IDAllocator

	BeforeEach(func() {
		alloc = signal.IDAllocator{}
	})

	It("mints strictly increasing ids starting at 1", func() {
		a := signal.New(&alloc, circuit.Output, 8)
		b := signal.New(&alloc, circuit.Output, 8)
		Expect(a.ID()).To(Equal(uint64(1)))
		Expect(b.ID()).To(Equal(uint64(2)))
	})

	It("reports changed iff val != next after Commit", func() {
		s := signal.New(&alloc, circuit.Output, 8)
		Expect(s.Commit()).To(BeFalse())
		s.SetNext(bitvec.FromUint64(8, 5))
		Expect(s.Commit()).To(BeTrue())
		Expect(s.Val().ToUint64()).To(Equal(uint64(5)))
		Expect(s.Commit()).To(BeFalse(), "second commit with no new next should be stable")
	})

	It("reports a MultipleDrivers error value when Connect is called twice", func() {
		s := signal.New(&alloc, circuit.Output, 1)
		Expect(s.Connect()).To(Succeed())

		err := s.Connect()
		Expect(err).To(HaveOccurred())
		cerr, ok := err.(*check.Error)
		Expect(ok).To(BeTrue())
		Expect(cerr.Kind).To(Equal(check.KindMultipleDrivers))
	})

	It("is idempotent: Commit never double-applies the same next", func() {
		s := signal.New(&alloc, circuit.Output, 4)
		s.SetNext(bitvec.FromUint64(4, 3))
		s.Commit()
		first := s.Val()
		s.Commit()
		Expect(s.Val()).To(Equal(first))
	})

	Describe("clock edge detection", func() {
		It("detects pos_edge exactly on a committed 0->1 transition", func() {
			clk := signal.New(&alloc, circuit.Input, 1)
			clk.Commit() // val=0 prev=0

			clk.SetNext(bitvec.FromBool(true))
			clk.Commit()
			Expect(clk.PosEdge()).To(BeTrue())
			Expect(clk.NegEdge()).To(BeFalse())

			clk.SetNext(bitvec.FromBool(true))
			clk.Commit() // no change
			Expect(clk.PosEdge()).To(BeFalse())

			clk.SetNext(bitvec.FromBool(false))
			clk.Commit()
			Expect(clk.NegEdge()).To(BeTrue())
			Expect(clk.PosEdge()).To(BeFalse())
		})
	})

	It("panics on width-mismatched SetNext", func() {
		s := signal.New(&alloc, circuit.Output, 8)
		Expect(func() { s.SetNext(bitvec.FromUint64(4, 1)) }).To(Panic())
	})
})
