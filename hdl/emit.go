package hdl

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sarchlab/gohdl/check"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
)

// reservedWords are HDL keywords that must be escaped if they appear as a
// generated identifier (spec.md §6: "forbidden reserved words are
// suffixed with $").
var reservedWords = map[string]bool{
	"module": true, "endmodule": true, "input": true, "output": true,
	"wire": true, "reg": true, "always": true, "begin": true, "end": true,
	"if": true, "else": true, "case": true, "endcase": true, "assign": true,
	"posedge": true, "negedge": true, "parameter": true,
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$]*$`)

// SafeIdent escapes an identifier per spec.md §6.
func SafeIdent(name string) string {
	if reservedWords[name] {
		return name + "$"
	}
	if !identRe.MatchString(name) {
		name = sanitize(name)
	}
	return name
}

func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}

type port struct {
	name string
	dir  circuit.Direction
	w    int
}

type submodule struct {
	instName, moduleName string
	ports                []port
}

type moduleBuilder struct {
	name       string
	node       circuit.Node
	ports      []port
	locals     []port
	submodules []submodule
}

// Emitter walks a block graph and produces one synthesizable HDL module
// per block, stitched into a single top-last file, per spec.md §4.5.
type Emitter struct {
	stack   []*moduleBuilder
	modules []string // finished module text, in completion (dependency) order
	nsName  string
}

// NewEmitter creates an Emitter ready to walk one block graph.
func NewEmitter() *Emitter { return &Emitter{} }

// EmitAll runs check.CheckConnected and check.CheckLogicLoops first (the
// emitter refuses to emit for a block failing either, per spec.md §4.5),
// then walks the graph and returns the stitched HDL text with the
// top-level module last.
func (e *Emitter) EmitAll(root circuit.Node, topName string) (string, error) {
	if err := check.CheckConnected(root); err != nil {
		return "", err
	}
	if err := check.CheckLogicLoops(root); err != nil {
		return "", err
	}

	circuit.WalkNamed(root, topName, e)

	seen := make(map[string]bool)
	var out []string
	for _, m := range e.modules {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return strings.Join(out, "\n\n"), nil
}

func (e *Emitter) VisitStartScope(name string, node circuit.Node) {
	e.stack = append(e.stack, &moduleBuilder{name: SafeIdent(name), node: node})
}

func (e *Emitter) VisitStartNamespace(name string, node circuit.Node) {
	e.nsName = name
}

func (e *Emitter) VisitAtom(name string, atom circuit.Atom) {
	if e.nsName != "" {
		name = fmt.Sprintf("%s_%s", e.nsName, name)
	}
	top := e.stack[len(e.stack)-1]
	p := port{name: SafeIdent(name), dir: atom.Dir(), w: atom.Width()}
	if atom.Dir() == circuit.Local {
		top.locals = append(top.locals, p)
	} else {
		top.ports = append(top.ports, p)
	}
}

func (e *Emitter) VisitEndNamespace(name string, node circuit.Node) {
	e.nsName = ""
}

func (e *Emitter) VisitEndScope(name string, node circuit.Node) {
	n := len(e.stack)
	top := e.stack[n-1]
	e.stack = e.stack[:n-1]

	text := e.render(top)
	e.modules = append(e.modules, text)

	if len(e.stack) > 0 {
		parent := e.stack[len(e.stack)-1]
		parent.submodules = append(parent.submodules, submodule{
			instName:   SafeIdent(name),
			moduleName: top.name,
			ports:      top.ports,
		})
	}
}

func (e *Emitter) render(m *moduleBuilder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s(\n", m.name)
	ports := sortedPorts(m.ports)
	for i, p := range ports {
		comma := ","
		if i == len(ports)-1 {
			comma = ""
		}
		fmt.Fprintf(&b, "    %s %s%s\n", verilogDir(p.dir), portDecl(p), comma)
	}
	b.WriteString(");\n\n")

	for _, p := range m.locals {
		fmt.Fprintf(&b, "    wire %s;\n", portDecl(p))
	}

	for _, sm := range m.submodules {
		fmt.Fprintf(&b, "    %s %s(\n", sm.moduleName, sm.instName)
		for i, p := range sortedPorts(sm.ports) {
			comma := ","
			if i == len(sm.ports)-1 {
				comma = ""
			}
			fmt.Fprintf(&b, "        .%s(%s)%s\n", p.name, p.name, comma)
		}
		b.WriteString("    );\n")
	}

	describer, ok := m.node.(hdlir.Describer)
	if !ok {
		b.WriteString("endmodule\n")
		return b.String()
	}
	mod := describer.Describe()

	if mod.Wrapper != nil {
		b.WriteString(mod.Wrapper.Body)
		b.WriteString("\n")
		for _, bb := range mod.Wrapper.BlackBoxes {
			fmt.Fprintf(&b, "    // black-box: %s\n", bb)
		}
		b.WriteString("endmodule\n")
		return b.String()
	}

	if mod.Behavior == hdlir.Sequential {
		b.WriteString("    always @(posedge clk) begin\n")
	} else {
		b.WriteString("    always @(*) begin\n")
	}
	for _, s := range mod.Body {
		b.WriteString(renderStmt(s, mod.Behavior, "        "))
	}
	b.WriteString("    end\n")
	b.WriteString("endmodule\n")
	return b.String()
}

func sortedPorts(ports []port) []port {
	out := append([]port(nil), ports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func portDecl(p port) string {
	if p.w == 1 {
		return p.name
	}
	return fmt.Sprintf("[%d:0] %s", p.w-1, p.name)
}

func verilogDir(d circuit.Direction) string {
	switch d {
	case circuit.Input:
		return "input"
	case circuit.Output:
		return "output"
	case circuit.InOut:
		return "inout"
	default:
		return "wire"
	}
}

// renderStmt prints a statement using a non-blocking assignment inside a
// synchronous block, blocking otherwise, per spec.md §4.5's emission
// rule (this mirrors the settle semantics: synchronous writes commit on
// the edge, combinational writes are immediate fixed-point solutions).
func renderStmt(s hdlir.Stmt, behavior hdlir.BehaviorKind, indent string) string {
	assignOp := "="
	if behavior == hdlir.Sequential {
		assignOp = "<="
	}
	switch st := s.(type) {
	case hdlir.Assign:
		return fmt.Sprintf("%s%s %s %s;\n", indent, st.LHS.Name, assignOp, hdlir.ExprString(st.RHS))
	case hdlir.SliceAssign:
		hi := st.Offset + st.Width - 1
		return fmt.Sprintf("%s%s[%d:%d] %s %s;\n", indent, st.Base.Name, hi, st.Offset, assignOp, hdlir.ExprString(st.RHS))
	case hdlir.If:
		var b strings.Builder
		fmt.Fprintf(&b, "%sif (%s) begin\n", indent, hdlir.ExprString(st.Cond))
		for _, s2 := range st.Then {
			b.WriteString(renderStmt(s2, behavior, indent+"    "))
		}
		if len(st.Else) > 0 {
			fmt.Fprintf(&b, "%send else begin\n", indent)
			for _, s2 := range st.Else {
				b.WriteString(renderStmt(s2, behavior, indent+"    "))
			}
		}
		fmt.Fprintf(&b, "%send\n", indent)
		return b.String()
	case hdlir.Match:
		var b strings.Builder
		fmt.Fprintf(&b, "%scase (%s)\n", indent, hdlir.ExprString(st.Sel))
		for _, c := range st.Cases {
			fmt.Fprintf(&b, "%s    %d: begin\n", indent, c.Value)
			for _, s2 := range c.Body {
				b.WriteString(renderStmt(s2, behavior, indent+"        "))
			}
			fmt.Fprintf(&b, "%s    end\n", indent)
		}
		if len(st.Default) > 0 {
			fmt.Fprintf(&b, "%s    default: begin\n", indent)
			for _, s2 := range st.Default {
				b.WriteString(renderStmt(s2, behavior, indent+"        "))
			}
			fmt.Fprintf(&b, "%s    end\n", indent)
		}
		fmt.Fprintf(&b, "%sendcase\n", indent)
		return b.String()
	default:
		return ""
	}
}
