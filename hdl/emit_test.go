package hdl_test

import (
	"strings"
	"testing"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdl"
	"github.com/sarchlab/gohdl/hdlir"
	"github.com/sarchlab/gohdl/signal"
)

// passthrough copies In to Out combinationally and describes itself for
// emission, exercising the Emitter's basic module/port rendering.
type passthrough struct {
	circuit.BlockBase
	In  *signal.Signal
	Out *signal.Signal
}

func newPassthrough(alloc *signal.IDAllocator, width int) *passthrough {
	p := &passthrough{
		In:  signal.New(alloc, circuit.Input, width),
		Out: signal.New(alloc, circuit.Output, width),
	}
	p.Init(p)
	return p
}

func (p *passthrough) Update() { p.Out.SetNext(p.In.Val()) }

func (p *passthrough) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Combinational,
		Body: []hdlir.Stmt{
			hdlir.Assign{LHS: hdlir.Ref{Name: "Out"}, RHS: hdlir.Ref{Name: "In"}},
		},
	}
}

func TestSafeIdentEscapesReservedWords(t *testing.T) {
	if got := hdl.SafeIdent("module"); got != "module$" {
		t.Fatalf("expected module$, got %s", got)
	}
	if got := hdl.SafeIdent("Out"); got != "Out" {
		t.Fatalf("expected Out unescaped, got %s", got)
	}
}

func TestEmitAllRejectsUnconnectedGraph(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newPassthrough(&alloc, 4)
	// no ConnectAll: Out stays unclaimed

	_, err := hdl.NewEmitter().EmitAll(uut, "passthrough")
	if err == nil {
		t.Fatal("expected EmitAll to refuse an unconnected block")
	}
}

func TestEmitAllProducesAModuleWithPorts(t *testing.T) {
	var alloc signal.IDAllocator
	uut := newPassthrough(&alloc, 4)
	uut.ConnectAll()
	uut.In.SetNext(bitvec.FromUint64(4, 1))
	uut.In.Commit()
	uut.UpdateAll()

	text, err := hdl.NewEmitter().EmitAll(uut, "passthrough")
	if err != nil {
		t.Fatalf("EmitAll failed: %v", err)
	}
	if !strings.Contains(text, "module passthrough(") {
		t.Fatalf("expected a module declaration, got:\n%s", text)
	}
	if !strings.Contains(text, "Out = In;") {
		t.Fatalf("expected the combinational assign, got:\n%s", text)
	}
	if !strings.Contains(text, "always @(*)") {
		t.Fatalf("expected a combinational always block, got:\n%s", text)
	}
}
