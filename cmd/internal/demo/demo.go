// Package demo is the small built-in circuit registry shared by the
// gohdlsim and gohdlgen command trees, the Go analogue of the teacher's
// test/*/main.go files: each hardcodes one circuit, a clock period, and a
// driver.Run() call. A library framework has no generic "load any user
// circuit from a file" mechanism (Go has no dynamic class loading), so
// the CLIs ship a small registry of ready-made circuits instead, built
// from the same widgets package the end-to-end tests exercise.
package demo

import (
	"fmt"
	"sort"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
	"github.com/sarchlab/gohdl/widgets"
)

// Circuit is a buildable demo: Root is ready for ConnectAll, Clock (if
// non-nil) is the signal the CLI should toggle every HalfPeriodPicos.
type Circuit struct {
	Root            circuit.Node
	Clock           *signal.Signal
	HalfPeriodPicos uint64
}

// Builder constructs a fresh Circuit using its own IDAllocator, so two
// demos never collide on signal ids.
type Builder func(alloc *signal.IDAllocator) Circuit

var registry = map[string]Builder{
	"counter": buildCounter,
	"shot":    buildShot,
	"fifo":    buildFIFO,
	"syncer":  buildSynchronizer,
}

// Names returns the registered demo names, sorted, for --help output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build looks up name and constructs a fresh Circuit, or returns an error
// listing the known names.
func Build(name string) (Circuit, error) {
	b, ok := registry[name]
	if !ok {
		return Circuit{}, fmt.Errorf("demo: unknown circuit %q (known: %v)", name, Names())
	}
	var alloc signal.IDAllocator
	return b(&alloc), nil
}

type counter struct {
	circuit.BlockBase
	Clk *signal.Signal
	Out *signal.Signal
}

func (c *counter) Update() {
	if c.Clk.PosEdge() {
		c.Out.SetNext(c.Out.Val().Add(bitvec.FromUint64(c.Out.Width(), 1)))
	}
}

func buildCounter(alloc *signal.IDAllocator) Circuit {
	c := &counter{
		Clk: signal.New(alloc, circuit.Input, 1),
		Out: signal.New(alloc, circuit.Output, 8),
	}
	c.Init(c)
	return Circuit{Root: c, Clock: c.Clk, HalfPeriodPicos: 500}
}

func buildShot(alloc *signal.IDAllocator) Circuit {
	s := widgets.NewShot(alloc, 8, 5)
	return Circuit{Root: s, Clock: s.Clock, HalfPeriodPicos: 500}
}

func buildFIFO(alloc *signal.IDAllocator) Circuit {
	f := widgets.NewSyncFIFO(alloc, 8, 4)
	return Circuit{Root: f, Clock: f.Clock, HalfPeriodPicos: 500}
}

func buildSynchronizer(alloc *signal.IDAllocator) Circuit {
	s := widgets.NewSynchronizer(alloc, "dest")
	return Circuit{Root: s, Clock: s.DestClock, HalfPeriodPicos: 500}
}
