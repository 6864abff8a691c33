// Package hdlir implements the expression/statement IR produced from a
// block's behavior (spec.md §3.5/§4.5); the emitter that walks the block
// graph and prints a synthesizable HDL module per block plus one stitched
// top lives in package hdl. Grounded on the Operation/OperandList tree shape of the
// teacher's core/program.go, generalized from CGRA opcodes to general
// combinational/sequential HDL statements.
package hdlir

import "fmt"

// BehaviorKind distinguishes combinational blocks (settle to a fixed
// point every delta cycle) from sequential blocks (evaluated on a clock
// edge), per spec.md §3.3/§4.3.
type BehaviorKind int

const (
	Combinational BehaviorKind = iota
	Sequential
)

func (k BehaviorKind) String() string {
	if k == Sequential {
		return "Synchronous"
	}
	return "Combinatorial"
}

// Expr is an HDL expression node.
type Expr interface{ isExpr() }

// Lit is an integer literal, rendered by ExprString as a sized decimal
// literal (e.g. 8'd1).
type Lit struct {
	Width int
	Value uint64 // low 64 bits; IR literals wider than 64 bits are rare and
	// not needed by this framework's widgets, so the IR keeps this simple.
}

// Ref is a reference to a named signal in the enclosing block's local
// namespace (a struct field name, as derived by circuit.BlockBase).
type Ref struct {
	Name string
}

// BinOp is a binary expression; Op is one of "+","-","*","&","|","^","==","<".
type BinOp struct {
	Op   string
	L, R Expr
}

// Slice reads Width bits of Base starting at bit Offset.
type Slice struct {
	Base          Expr
	Offset, Width int
}

func (Lit) isExpr()   {}
func (Ref) isExpr()   {}
func (BinOp) isExpr() {}
func (Slice) isExpr() {}

// Stmt is an HDL statement node.
type Stmt interface{ isStmt() }

// Assign is `lhs.next = rhs`.
type Assign struct {
	LHS Ref
	RHS Expr
}

// SliceAssign is `base.next[offset+width-1:offset] = rhs`.
type SliceAssign struct {
	Base          Ref
	Offset, Width int
	RHS           Expr
}

// If is a conditional statement with optional Else branch.
type If struct {
	Cond       Expr
	Then, Else []Stmt
}

// MatchCase pairs an enum-variant value with the statements to run.
type MatchCase struct {
	Value int
	Body  []Stmt
}

// Match lowers to a synthesizable case statement over an enum-typed
// selector.
type Match struct {
	Sel     Expr
	Cases   []MatchCase
	Default []Stmt
}

func (Assign) isStmt()      {}
func (SliceAssign) isStmt() {}
func (If) isStmt()          {}
func (Match) isStmt()       {}

// Unroll expands an indexed-for unrolling at IR-build time: the HDL
// framework has no runtime loop construct, so "for i in 0..n" is always a
// compile-time convenience that fully expands into n copies of body(i).
func Unroll(n int, body func(i int) []Stmt) []Stmt {
	var out []Stmt
	for i := 0; i < n; i++ {
		out = append(out, body(i)...)
	}
	return out
}

// Wrapper substitutes hand-written HDL text in place of a generated
// module body, per spec.md §4.5's custom-wrapper rule. Per spec.md §9's
// open question, wrappers are treated as OPAQUE: the loop checker never
// inspects Body. The emitter lists BlackBoxes as comments in the module
// text; nothing in package sim checks them.
type Wrapper struct {
	Body       string
	BlackBoxes []string
}

// Module is the HDL description a block contributes: its behavior kind
// and body statements, or a Wrapper overriding the body.
type Module struct {
	Behavior BehaviorKind
	Body     []Stmt
	Wrapper  *Wrapper
}

// Describer is implemented by blocks with synthesizable behavior; it is
// the HDL-producing counterpart of circuit.Updater.
type Describer interface {
	Describe() Module
}

// EnumWidth returns ceil(log2(numVariants)), the bit width a
// fixed-width-lowered enum signal needs, per spec.md §4.5.
func EnumWidth(numVariants int) int {
	if numVariants <= 1 {
		return 1
	}
	w := 0
	for (1 << uint(w)) < numVariants {
		w++
	}
	return w
}

// ExprString renders an expression as HDL text (used by the emitter).
func ExprString(e Expr) string {
	switch v := e.(type) {
	case Lit:
		return fmt.Sprintf("%d'd%d", v.Width, v.Value)
	case Ref:
		return v.Name
	case BinOp:
		return fmt.Sprintf("(%s %s %s)", ExprString(v.L), v.Op, ExprString(v.R))
	case Slice:
		hi := v.Offset + v.Width - 1
		return fmt.Sprintf("%s[%d:%d]", ExprString(v.Base), hi, v.Offset)
	default:
		return "?"
	}
}
