package check

import (
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
)

// logicLoopsProbe mirrors the upstream LocalVars probe: it tracks, per
// scope, the set of Local/Output signal names declared directly in that
// scope, then at scope exit asks the block's combinational behavior (if
// any) whether it read any of those names before writing them in the
// same pass — the textbook "assign x = x" combinational loop.
type logicLoopsProbe struct {
	path  namedPath
	names []map[string]bool
	loops []PathedName
}

func (l *logicLoopsProbe) pushScope(name string) {
	l.path.push(name)
	l.names = append(l.names, map[string]bool{})
}

func (l *logicLoopsProbe) popScope() {
	l.names = l.names[:len(l.names)-1]
	l.path.pop()
}

func (l *logicLoopsProbe) VisitStartScope(name string, node circuit.Node) { l.pushScope(name) }

func (l *logicLoopsProbe) VisitStartNamespace(name string, node circuit.Node) { l.pushScope(name) }

func (l *logicLoopsProbe) VisitAtom(name string, atom circuit.Atom) {
	if atom.Dir() == circuit.Local || atom.Dir() == circuit.Output {
		l.names[len(l.names)-1][name] = true
	}
}

func (l *logicLoopsProbe) VisitEndNamespace(name string, node circuit.Node) { l.popScope() }

func (l *logicLoopsProbe) VisitEndScope(name string, node circuit.Node) {
	candidates := logicLoopCandidates(node)
	locals := l.names[len(l.names)-1]
	for _, candidate := range candidates {
		if locals[candidate] {
			l.loops = append(l.loops, PathedName{Path: l.path.String(), Name: candidate})
		}
	}
	l.popScope()
}

// logicLoopCandidates runs the read-before-write detector over a
// combinational block's derived IR. Sequential blocks and blocks with no
// Describer (pure signal leaves, wrappers) never contribute candidates:
// a register's own output legitimately appears on both sides of its
// clocked update.
func logicLoopCandidates(node circuit.Node) []string {
	d, ok := node.(hdlir.Describer)
	if !ok {
		return nil
	}
	mod := d.Describe()
	if mod.Wrapper != nil || mod.Behavior != hdlir.Combinational {
		return nil
	}

	written := map[string]bool{}
	var violations []string
	onWrite := func(name string) { written[name] = true }
	onRead := func(name string) {
		if !written[name] {
			violations = append(violations, name)
		}
	}
	hdlir.WalkReadsWrites(mod.Body, onRead, onWrite)
	return violations
}

// CheckLogicLoops reports combinational paths that read a Local or Output
// signal before any statement in the same block writes it, per spec.md
// §4.5. Sequential (clocked) behavior is exempt, matching the upstream
// check_logic_loops' treatment of registers.
func CheckLogicLoops(root circuit.Node) error {
	p := &logicLoopsProbe{}
	circuit.Walk(root, p)
	if len(p.loops) == 0 {
		return nil
	}
	return newLogicLoopsErr(p.loops)
}
