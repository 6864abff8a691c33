package widgets

import (
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
	"github.com/sarchlab/gohdl/signal"
)

// Synchronizer is the two-flop double-register CDC primitive: In (driven
// in one clock domain) is sampled into Out (read in DestClock's domain)
// through two back-to-back registers, the minimal safe way to cross a
// single bit between domains, generalized from the upstream
// VectorSynchronizer/SyncSender-SyncReceiver pair to the common
// single-bit case spec.md §8's cross-domain scenario exercises.
type Synchronizer struct {
	circuit.BlockBase

	DestClock *signal.Signal
	In        *signal.Signal
	Out       *signal.Signal

	Stage0 *signal.Signal
}

// NewSynchronizer builds a 2-stage synchronizer sampling In into Out on
// DestClock's domain.
func NewSynchronizer(alloc *signal.IDAllocator, destDomain circuit.Domain) *Synchronizer {
	s := &Synchronizer{
		DestClock: signal.New(alloc, circuit.Input, 1),
		In:        signal.New(alloc, circuit.Input, 1),
		Out:       signal.New(alloc, circuit.Output, 1),
		Stage0:    signal.New(alloc, circuit.Local, 1),
	}
	s.DestClock.Domain = destDomain
	s.Out.Domain = destDomain
	s.Init(s)
	return s
}

// Update shifts In through two flip-flops clocked by DestClock, the
// standard metastability-hardening depth.
func (s *Synchronizer) Update() {
	if !s.DestClock.PosEdge() {
		return
	}
	s.Out.SetNext(s.Stage0.Val())
	s.Stage0.NextBool(s.In.Val().Bool())
}

// Describe renders the synchronizer's two-stage shift for HDL emission.
func (s *Synchronizer) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Sequential,
		Body: []hdlir.Stmt{
			hdlir.Assign{LHS: hdlir.Ref{Name: "Out"}, RHS: hdlir.Ref{Name: "Stage0"}},
			hdlir.Assign{LHS: hdlir.Ref{Name: "Stage0"}, RHS: hdlir.Ref{Name: "In"}},
		},
	}
}

var (
	_ circuit.Node    = (*Synchronizer)(nil)
	_ hdlir.Describer = (*Synchronizer)(nil)
)
