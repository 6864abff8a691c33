// Package widgets implements the small reusable synchronous blocks the
// framework ships out of the box: a one-shot timer and a synchronous
// FIFO, grounded on the upstream rust_hdl_lib_widgets Shot<N> and the
// rust-hdl-test SyncFIFO/SynchronousFIFO fixtures.
package widgets

import (
	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
	"github.com/sarchlab/gohdl/signal"
)

// Shot is a one-shot timer: a rising edge on Trigger holds Active high
// for exactly Cycles clock periods, then pulses Fired for one cycle.
// Width must be wide enough to count to Cycles (panics otherwise, the Go
// analogue of the upstream's const-generic N bound check).
type Shot struct {
	circuit.BlockBase

	Clock   *signal.Signal
	Trigger *signal.Signal
	Active  *signal.Signal
	Fired   *signal.Signal

	Counter *signal.Signal
	State   *signal.Signal

	cycles bitvec.Value
}

// NewShot builds a Shot that stays Active for the given number of clock
// cycles once triggered. width must satisfy 1<<width > cycles.
func NewShot(alloc *signal.IDAllocator, width int, cycles uint64) *Shot {
	if cycles >= uint64(1)<<uint(width) {
		panic("widgets: Shot width too small to count to cycles")
	}
	s := &Shot{
		Clock:   signal.New(alloc, circuit.Input, 1),
		Trigger: signal.New(alloc, circuit.Input, 1),
		Active:  signal.New(alloc, circuit.Output, 1),
		Fired:   signal.New(alloc, circuit.Output, 1),
		Counter: signal.New(alloc, circuit.Local, width),
		State:   signal.New(alloc, circuit.Local, 1),
		cycles:  bitvec.FromUint64(width, cycles),
	}
	s.Init(s)
	return s
}

// Update mirrors Shot<N>::update: advance the counter while active, fire
// for exactly one cycle when the count is reached, then arm on trigger.
func (s *Shot) Update() {
	if !s.Clock.PosEdge() {
		return
	}

	if s.State.Val().Bool() {
		s.Counter.SetNext(s.Counter.Val().Add(bitvec.FromUint64(s.Counter.Width(), 1)))
	}

	fired := false
	if s.State.Val().Bool() && s.Counter.Val().Eq(s.cycles) {
		s.State.NextBool(false)
		fired = true
	} else {
		s.State.SetNext(s.State.Val())
	}
	s.Fired.NextBool(fired)
	s.Active.NextBool(s.State.Val().Bool() && !fired)

	if s.Trigger.Val().Bool() {
		s.State.NextBool(true)
		s.Counter.SetNext(bitvec.Zero(s.Counter.Width()))
	}
}

// Describe renders part of Shot's sequential behavior for HDL emission:
// the counter increment while State is set, and Active following State.
// The Fired pulse, the clearing of State at the end of the count, and
// re-arming on Trigger are not rendered.
func (s *Shot) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Sequential,
		Body: []hdlir.Stmt{
			hdlir.If{
				Cond: hdlir.Ref{Name: "State"},
				Then: []hdlir.Stmt{
					hdlir.Assign{
						LHS: hdlir.Ref{Name: "Counter"},
						RHS: hdlir.BinOp{Op: "+", L: hdlir.Ref{Name: "Counter"}, R: hdlir.Lit{Width: s.Counter.Width(), Value: 1}},
					},
				},
			},
			hdlir.Assign{LHS: hdlir.Ref{Name: "Active"}, RHS: hdlir.Ref{Name: "State"}},
		},
	}
}

var (
	_ circuit.Node    = (*Shot)(nil)
	_ hdlir.Describer = (*Shot)(nil)
)
