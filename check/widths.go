package check

import (
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
)

// widthProbe checks every literal-valued Assign/SliceAssign in a block's
// derived IR against the declared width of its target signal, the
// simplest of the mismatches spec.md §4.5 asks the emitter to reject
// before generating HDL (a literal wider than its target truncates
// silently in Verilog, which this framework treats as a build error
// instead).
type widthProbe struct {
	path  namedPath
	scope []map[string]int
	err   *Error
}

func (w *widthProbe) VisitStartScope(name string, node circuit.Node) {
	w.path.push(name)
	w.scope = append(w.scope, map[string]int{})
}

func (w *widthProbe) VisitStartNamespace(name string, node circuit.Node) {}

func (w *widthProbe) VisitAtom(name string, atom circuit.Atom) {
	w.scope[len(w.scope)-1][name] = atom.Width()
}

func (w *widthProbe) VisitEndNamespace(name string, node circuit.Node) {}

func (w *widthProbe) VisitEndScope(name string, node circuit.Node) {
	widths := w.scope[len(w.scope)-1]
	if w.err == nil {
		w.err = checkModuleWidths(node, w.path.String(), widths)
	}
	w.scope = w.scope[:len(w.scope)-1]
	w.path.pop()
}

func checkModuleWidths(node circuit.Node, path string, widths map[string]int) *Error {
	d, ok := node.(hdlir.Describer)
	if !ok {
		return nil
	}
	mod := d.Describe()
	if mod.Wrapper != nil {
		return nil
	}
	for _, s := range mod.Body {
		if err := checkStmtWidth(s, path, widths); err != nil {
			return err
		}
	}
	return nil
}

func checkStmtWidth(s hdlir.Stmt, path string, widths map[string]int) *Error {
	switch st := s.(type) {
	case hdlir.Assign:
		lhsW, ok := widths[st.LHS.Name]
		if !ok {
			return nil
		}
		if lit, ok := st.RHS.(hdlir.Lit); ok && lit.Width != lhsW {
			return &Error{Kind: KindWidthMismatch, Path: path + "." + st.LHS.Name, LhsWidth: lhsW, RhsWidth: lit.Width}
		}
	case hdlir.SliceAssign:
		if lit, ok := st.RHS.(hdlir.Lit); ok && lit.Width != st.Width {
			return &Error{Kind: KindWidthMismatch, Path: path + "." + st.Base.Name, LhsWidth: st.Width, RhsWidth: lit.Width}
		}
	case hdlir.If:
		for _, s2 := range st.Then {
			if err := checkStmtWidth(s2, path, widths); err != nil {
				return err
			}
		}
		for _, s2 := range st.Else {
			if err := checkStmtWidth(s2, path, widths); err != nil {
				return err
			}
		}
	case hdlir.Match:
		for _, c := range st.Cases {
			for _, s2 := range c.Body {
				if err := checkStmtWidth(s2, path, widths); err != nil {
					return err
				}
			}
		}
		for _, s2 := range st.Default {
			if err := checkStmtWidth(s2, path, widths); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckWidthsAndDirections reports the first literal-assignment width
// mismatch found anywhere in root's block graph. Signal directions are
// not checked.
func CheckWidthsAndDirections(root circuit.Node) error {
	p := &widthProbe{}
	circuit.Walk(root, p)
	if p.err == nil {
		return nil
	}
	return p.err
}
