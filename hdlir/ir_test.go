package hdlir_test

import (
	"testing"

	"github.com/sarchlab/gohdl/hdlir"
)

func TestExprStringRendersNestedExpressions(t *testing.T) {
	e := hdlir.BinOp{
		Op: "+",
		L:  hdlir.Ref{Name: "A"},
		R:  hdlir.Slice{Base: hdlir.Ref{Name: "B"}, Offset: 2, Width: 4},
	}
	got := hdlir.ExprString(e)
	want := "(A + B[5:2])"
	if got != want {
		t.Fatalf("ExprString() = %q, want %q", got, want)
	}
}

func TestUnrollExpandsEachIteration(t *testing.T) {
	stmts := hdlir.Unroll(3, func(i int) []hdlir.Stmt {
		return []hdlir.Stmt{hdlir.Assign{LHS: hdlir.Ref{Name: "x"}, RHS: hdlir.Lit{Width: 8, Value: uint64(i)}}}
	})
	if len(stmts) != 3 {
		t.Fatalf("expected 3 unrolled statements, got %d", len(stmts))
	}
	last := stmts[2].(hdlir.Assign).RHS.(hdlir.Lit)
	if last.Value != 2 {
		t.Fatalf("expected the last unrolled literal to be 2, got %d", last.Value)
	}
}

func TestEnumWidth(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4}
	for n, want := range cases {
		if got := hdlir.EnumWidth(n); got != want {
			t.Errorf("EnumWidth(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestWalkReadsWritesOrdersReadsBeforeWrites(t *testing.T) {
	var reads, writes, order []string
	body := []hdlir.Stmt{
		hdlir.Assign{LHS: hdlir.Ref{Name: "Out"}, RHS: hdlir.Ref{Name: "In"}},
	}
	hdlir.WalkReadsWrites(body,
		func(name string) { reads = append(reads, name); order = append(order, "read:"+name) },
		func(name string) { writes = append(writes, name); order = append(order, "write:"+name) },
	)
	if len(order) != 2 || order[0] != "read:In" || order[1] != "write:Out" {
		t.Fatalf("expected the read of In before the write of Out, got %v", order)
	}
	if len(reads) != 1 || reads[0] != "In" {
		t.Fatalf("expected a read of In, got %v", reads)
	}
	if len(writes) != 1 || writes[0] != "Out" {
		t.Fatalf("expected a write of Out, got %v", writes)
	}
}
