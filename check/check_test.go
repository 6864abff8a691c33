package check_test

import (
	"testing"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/check"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
	"github.com/sarchlab/gohdl/signal"
)

// broken has an Output that its Update never assigns. ConnectAll claims
// every non-Input signal regardless, so O stays unclaimed (and
// CheckConnected flags it) only while ConnectAll has not been called.
type broken struct {
	circuit.BlockBase
	I *signal.Signal
	O *signal.Signal
}

func newBroken(alloc *signal.IDAllocator) *broken {
	b := &broken{
		I: signal.New(alloc, circuit.Input, 1),
		O: signal.New(alloc, circuit.Output, 1),
	}
	b.Init(b)
	return b
}

func (b *broken) Update() {}

func TestCheckConnectedFlagsOpenOutput(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newBroken(&alloc)
	// don't call ConnectAll: O stays unclaimed
	err := check.CheckConnected(uut)
	if err == nil {
		t.Fatal("expected CheckConnected to report the unclaimed output")
	}
	cerr, ok := err.(*check.Error)
	if !ok || cerr.Kind != check.KindOpenSignal {
		t.Fatalf("expected KindOpenSignal, got %v", err)
	}
}

func TestCheckConnectedAllowsTopLevelInput(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newBroken(&alloc)
	uut.ConnectAll()
	err := check.CheckConnected(uut)
	if err != nil {
		t.Fatalf("expected no error once ConnectAll claims O: %v", err)
	}
}

// loopy describes combinational behavior that reads Out before writing
// it: `Out.next = Out.val() + 1`, a textbook self-referential loop.
type loopy struct {
	circuit.BlockBase
	In  *signal.Signal
	Out *signal.Signal
}

func newLoopy(alloc *signal.IDAllocator) *loopy {
	l := &loopy{
		In:  signal.New(alloc, circuit.Input, 8),
		Out: signal.New(alloc, circuit.Output, 8),
	}
	l.Init(l)
	return l
}

func (l *loopy) Update() {
	l.Out.SetNext(l.Out.Val().Add(bitvec.FromUint64(8, 1)))
}

func (l *loopy) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Combinational,
		Body: []hdlir.Stmt{
			hdlir.Assign{
				LHS: hdlir.Ref{Name: "Out"},
				RHS: hdlir.BinOp{Op: "+", L: hdlir.Ref{Name: "Out"}, R: hdlir.Lit{Width: 8, Value: 1}},
			},
		},
	}
}

func TestCheckLogicLoopsFlagsSelfReference(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newLoopy(&alloc)
	uut.ConnectAll()

	err := check.CheckLogicLoops(uut)
	if err == nil {
		t.Fatal("expected CheckLogicLoops to report the combinational loop")
	}
	cerr, ok := err.(*check.Error)
	if !ok || cerr.Kind != check.KindLogicLoops {
		t.Fatalf("expected KindLogicLoops, got %v", err)
	}
}

// reg is a sequential block with the same read-before-write shape as
// loopy, which must NOT be flagged: registers legitimately read their own
// prior value every clock edge.
type reg struct {
	circuit.BlockBase
	Clk *signal.Signal
	Out *signal.Signal
}

func newReg(alloc *signal.IDAllocator) *reg {
	r := &reg{
		Clk: signal.New(alloc, circuit.Input, 1),
		Out: signal.New(alloc, circuit.Output, 8),
	}
	r.Init(r)
	return r
}

func (r *reg) Update() {
	if r.Clk.PosEdge() {
		r.Out.SetNext(r.Out.Val().Add(bitvec.FromUint64(8, 1)))
	}
}

func (r *reg) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Sequential,
		Body: []hdlir.Stmt{
			hdlir.Assign{
				LHS: hdlir.Ref{Name: "Out"},
				RHS: hdlir.BinOp{Op: "+", L: hdlir.Ref{Name: "Out"}, R: hdlir.Lit{Width: 8, Value: 1}},
			},
		},
	}
}

func TestCheckLogicLoopsExemptsSequentialBlocks(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newReg(&alloc)
	uut.ConnectAll()

	if err := check.CheckLogicLoops(uut); err != nil {
		t.Fatalf("sequential self-reference should not be a logic loop: %v", err)
	}
}

// mismatched assigns a too-wide literal to an 8-bit output.
type mismatched struct {
	circuit.BlockBase
	Out *signal.Signal
}

func newMismatched(alloc *signal.IDAllocator) *mismatched {
	m := &mismatched{Out: signal.New(alloc, circuit.Output, 8)}
	m.Init(m)
	return m
}

func (m *mismatched) Update() {}

func (m *mismatched) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Combinational,
		Body: []hdlir.Stmt{
			hdlir.Assign{LHS: hdlir.Ref{Name: "Out"}, RHS: hdlir.Lit{Width: 16, Value: 3}},
		},
	}
}

func TestCheckWidthsAndDirectionsFlagsLiteralMismatch(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newMismatched(&alloc)
	uut.ConnectAll()

	err := check.CheckWidthsAndDirections(uut)
	if err == nil {
		t.Fatal("expected a width mismatch error")
	}
	cerr, ok := err.(*check.Error)
	if !ok || cerr.Kind != check.KindWidthMismatch {
		t.Fatalf("expected KindWidthMismatch, got %v", err)
	}
}

func TestCheckClockDomainsFlagsMixedDomainScope(t *testing.T) {
	var alloc signal.IDAllocator
	type mixer struct {
		circuit.BlockBase
		A *signal.Signal
		B *signal.Signal
	}
	m := &mixer{
		A: signal.New(&alloc, circuit.Input, 1),
		B: signal.New(&alloc, circuit.Input, 1),
	}
	m.A.Domain = "fast"
	m.B.Domain = "slow"
	m.Init(m)
	m.ConnectAll()

	err := check.CheckClockDomains(m)
	if err == nil {
		t.Fatal("expected a clock-domain crossing error")
	}
	cerr, ok := err.(*check.Error)
	if !ok || cerr.Kind != check.KindClockDomainCross {
		t.Fatalf("expected KindClockDomainCross, got %v", err)
	}
}
