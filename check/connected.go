package check

import (
	"fmt"

	"github.com/sarchlab/gohdl/circuit"
)

// checkConnectedProbe mirrors the upstream CheckConnected probe: every
// atom must be Claimed(), except an Input-direction atom sitting directly
// at the top scope ("uut"), which is the simulation testbench's own
// driving point and is never claimed by a parent block.
type checkConnectedProbe struct {
	path      namedPath
	namespace namedPath
	failures  map[uint64]PathedName
}

func (c *checkConnectedProbe) VisitStartScope(name string, node circuit.Node) {
	c.path.push(name)
	c.namespace.reset()
}

func (c *checkConnectedProbe) VisitStartNamespace(name string, node circuit.Node) {
	c.namespace.push(name)
}

func (c *checkConnectedProbe) VisitAtom(name string, atom circuit.Atom) {
	isTopScope := c.path.String() == "uut"
	isInput := atom.Dir() == circuit.Input
	if atom.Claimed() || (isInput && isTopScope) {
		return
	}
	fullName := name
	if !c.namespace.isEmpty() {
		fullName = fmt.Sprintf("%s$%s", c.namespace.String(), name)
	}
	if c.failures == nil {
		c.failures = make(map[uint64]PathedName)
	}
	c.failures[atom.ID()] = PathedName{Path: c.path.String(), Name: fullName}
}

func (c *checkConnectedProbe) VisitEndNamespace(name string, node circuit.Node) {
	c.namespace.pop()
}

func (c *checkConnectedProbe) VisitEndScope(name string, node circuit.Node) {
	c.path.pop()
}

// CheckConnected reports every unclaimed (undriven) signal in root, per
// spec.md §4.5's pre-emission/pre-simulation gate. A top-level Input is
// exempt: it is the testbench's own drive point.
func CheckConnected(root circuit.Node) error {
	p := &checkConnectedProbe{}
	circuit.Walk(root, p)
	if len(p.failures) == 0 {
		return nil
	}
	return newOpenSignalErr(p.failures)
}
