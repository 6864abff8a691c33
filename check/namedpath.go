package check

import "strings"

// namedPath is a stack of scope names joined with "." on String(), the Go
// analogue of the upstream NamedPath used by both check probes.
type namedPath struct {
	parts []string
}

func (p *namedPath) push(name string) { p.parts = append(p.parts, name) }

func (p *namedPath) pop() {
	if len(p.parts) > 0 {
		p.parts = p.parts[:len(p.parts)-1]
	}
}

func (p *namedPath) reset() { p.parts = p.parts[:0] }

func (p *namedPath) isEmpty() bool { return len(p.parts) == 0 }

func (p *namedPath) String() string { return strings.Join(p.parts, ".") }
