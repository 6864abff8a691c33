package circuit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
)

// adder is a minimal combinational block used to exercise BlockBase's
// reflective field derivation: two Inputs, one Output, one Update.
type adder struct {
	circuit.BlockBase
	A, B *signal.Signal
	Sum  *signal.Signal
}

func newAdder(alloc *signal.IDAllocator, width int) *adder {
	a := &adder{
		A:   signal.New(alloc, circuit.Input, width),
		B:   signal.New(alloc, circuit.Input, width),
		Sum: signal.New(alloc, circuit.Output, width),
	}
	a.Init(a)
	return a
}

func (a *adder) Update() {
	a.Sum.SetNext(a.A.Val().Add(a.B.Val()))
}

var _ = Describe("BlockBase", func() {
	It("derives UpdateAll from the combinational Update method", func() {
		var alloc signal.IDAllocator
		uut := newAdder(&alloc, 8)
		uut.ConnectAll()

		uut.A.SetNext(bitvec.FromUint64(8, 3))
		uut.B.SetNext(bitvec.FromUint64(8, 4))
		uut.A.Commit()
		uut.B.Commit()

		changed := uut.UpdateAll()
		Expect(changed).To(BeTrue())
		Expect(uut.Sum.Val().ToUint64()).To(Equal(uint64(7)))
	})

	It("claims Output/Local signals on ConnectAll and is idempotent", func() {
		var alloc signal.IDAllocator
		uut := newAdder(&alloc, 4)
		Expect(uut.Sum.Claimed()).To(BeFalse())
		uut.ConnectAll()
		Expect(uut.Sum.Claimed()).To(BeTrue())
		Expect(func() { uut.ConnectAll() }).NotTo(Panic())
	})

	It("walks the graph with VisitStartScope/VisitAtom/VisitEndScope", func() {
		var alloc signal.IDAllocator
		uut := newAdder(&alloc, 4)

		var visited []string
		probe := &recordingProbe{}
		circuit.Walk(uut, probe)
		visited = probe.atoms
		Expect(visited).To(ConsistOf("A", "B", "Sum"))
		Expect(probe.scopeStarts).To(Equal(1))
		Expect(probe.scopeEnds).To(Equal(1))
	})
})

type recordingProbe struct {
	atoms       []string
	scopeStarts int
	scopeEnds   int
}

func (r *recordingProbe) VisitStartScope(name string, node circuit.Node)     { r.scopeStarts++ }
func (r *recordingProbe) VisitStartNamespace(name string, node circuit.Node) {}
func (r *recordingProbe) VisitAtom(name string, atom circuit.Atom)           { r.atoms = append(r.atoms, name) }
func (r *recordingProbe) VisitEndNamespace(name string, node circuit.Node)   {}
func (r *recordingProbe) VisitEndScope(name string, node circuit.Node)       { r.scopeEnds++ }
