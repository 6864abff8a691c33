// Package trace implements the VCD (Value Change Dump) sink: a probe that
// walks the block graph the same way check's probes do, emitting the
// IEEE 1364 value-change-dump text format any waveform viewer reads.
// Grounded on the probe/visitor shape in circuit.Probe and on
// verify/report.go's plain fmt.Fprintf-against-an-io.Writer style — the
// teacher's pack carries no VCD writer of its own, so this is built from
// the format's own structure rather than translated from an example.
package trace

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
)

// firstVCDChar and lastVCDChar bound the printable-ASCII alphabet VCD
// uses for its compact identifier codes (every byte except space).
const (
	firstVCDChar = '!'
	lastVCDChar  = '~'
)

// idEncoder assigns each traced atom a short, distinct, monotonically
// increasing identifier code from the VCD alphabet.
type idEncoder struct {
	next int
}

func (e *idEncoder) encode(n int) string {
	span := int(lastVCDChar-firstVCDChar) + 1
	var out []byte
	for {
		out = append(out, byte(firstVCDChar)+byte(n%span))
		n /= span
		if n == 0 {
			break
		}
		n--
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func (e *idEncoder) allocate() string {
	id := e.encode(e.next)
	e.next++
	return id
}

// VCDWriter writes a value-change dump of a block graph's signal traffic
// to an io.Writer, per spec.md §4.4's tracing requirement. Create one
// with NewVCDWriter, call WriteHeader once, then Sample after every
// settled simulator tick.
type VCDWriter struct {
	w         *bufio.Writer
	root      circuit.Node
	namespace string

	ids       map[uint64]string
	order     []*signal.Signal
	lastValue map[uint64]string

	headerWritten bool
}

// NewVCDWriter creates a writer over root, dumping to w. namespace is a
// free-form run identifier (typically signal.IDAllocator.Namespace().
// String()) stamped into the header's $comment, so two runs' dumps can be
// told apart even though each run's own signal ids restart from "!".
func NewVCDWriter(w io.Writer, root circuit.Node, namespace string) *VCDWriter {
	return &VCDWriter{
		w:         bufio.NewWriter(w),
		root:      root,
		namespace: namespace,
		ids:       make(map[uint64]string),
		lastValue: make(map[uint64]string),
	}
}

// vcdScopeProbe walks the graph once, declaring $scope/$var/$upscope for
// every block and atom and assigning each atom a compact id.
type vcdScopeProbe struct {
	vw *VCDWriter
	ec idEncoder
}

func (p *vcdScopeProbe) VisitStartScope(name string, _ circuit.Node) {
	fmt.Fprintf(p.vw.w, "$scope module %s $end\n", safeVCDName(name))
}

func (p *vcdScopeProbe) VisitStartNamespace(name string, _ circuit.Node) {
	fmt.Fprintf(p.vw.w, "$scope module %s $end\n", safeVCDName(name))
}

func (p *vcdScopeProbe) VisitAtom(name string, atom circuit.Atom) {
	id := p.ec.allocate()
	p.vw.ids[atom.ID()] = id
	kind := "wire"
	if atom.Width() == 1 {
		kind = "reg"
	}
	fmt.Fprintf(p.vw.w, "$var %s %d %s %s $end\n", kind, atom.Width(), id, safeVCDName(name))
	if sig, ok := atom.(*signal.Signal); ok {
		p.vw.order = append(p.vw.order, sig)
	}
}

func (p *vcdScopeProbe) VisitEndNamespace(string, circuit.Node) {
	fmt.Fprintln(p.vw.w, "$upscope $end")
}

func (p *vcdScopeProbe) VisitEndScope(string, circuit.Node) {
	fmt.Fprintln(p.vw.w, "$upscope $end")
}

// safeVCDName replaces characters VCD readers choke on ($, space) with an
// underscore; signal/block names in this framework are already valid Go
// identifiers, so this only guards against pathological user-chosen
// scope names.
func safeVCDName(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == ' ' || c == '$' {
			out[i] = '_'
		}
	}
	return string(out)
}

// WriteHeader writes the $date/$version/$timescale/$comment preamble,
// declares every atom reachable from root via circuit.Walk, then dumps
// every atom's initial value under a #0 $dumpvars section. Must be
// called exactly once, before the first Sample.
func (vw *VCDWriter) WriteHeader(timescale string) error {
	if vw.headerWritten {
		return fmt.Errorf("trace: WriteHeader called twice")
	}
	vw.headerWritten = true

	fmt.Fprintln(vw.w, "$date")
	fmt.Fprintln(vw.w, "    (simulated)")
	fmt.Fprintln(vw.w, "$end")
	fmt.Fprintln(vw.w, "$version")
	fmt.Fprintln(vw.w, "    gohdl trace.VCDWriter")
	fmt.Fprintln(vw.w, "$end")
	if vw.namespace != "" {
		fmt.Fprintf(vw.w, "$comment\n    run %s\n$end\n", vw.namespace)
	}
	fmt.Fprintf(vw.w, "$timescale %s $end\n", timescale)

	probe := &vcdScopeProbe{vw: vw}
	circuit.Walk(vw.root, probe)
	fmt.Fprintln(vw.w, "$enddefinitions $end")

	fmt.Fprintln(vw.w, "#0")
	fmt.Fprintln(vw.w, "$dumpvars")
	for _, sig := range vw.order {
		line := valueLine(vw.ids[sig.ID()], sig.Val())
		vw.lastValue[sig.ID()] = line
		fmt.Fprintln(vw.w, line)
	}
	fmt.Fprintln(vw.w, "$end")

	return vw.w.Flush()
}

// Sample emits a new "#<picos>" timestamp section (only if any tracked
// signal actually changed) followed by one value line per signal whose
// committed value differs from what was last written. Call once per
// settled simulator tick, after root.UpdateAll has converged, passing the
// simulator's current picosecond clock (sim.Simulation.NowPicos).
func (vw *VCDWriter) Sample(picos uint64) error {
	if !vw.headerWritten {
		return fmt.Errorf("trace: Sample called before WriteHeader")
	}

	var changedLines []string
	for _, sig := range vw.order {
		line := valueLine(vw.ids[sig.ID()], sig.Val())
		if line != vw.lastValue[sig.ID()] {
			vw.lastValue[sig.ID()] = line
			changedLines = append(changedLines, line)
		}
	}
	if len(changedLines) == 0 {
		return nil
	}

	fmt.Fprintf(vw.w, "#%d\n", picos)
	for _, line := range changedLines {
		fmt.Fprintln(vw.w, line)
	}

	return vw.w.Flush()
}

// valueLine renders one VCD value-change line: "<bit><id>" for width-1
// signals, "b<binary> <id>" otherwise.
func valueLine(id string, v bitvec.Value) string {
	if v.Width == 1 {
		if v.Bool() {
			return "1" + id
		}
		return "0" + id
	}
	bits := make([]byte, v.Width)
	for i := 0; i < v.Width; i++ {
		bit := v.GetBits(v.Width-1-i, 1)
		if bit.Bool() {
			bits[i] = '1'
		} else {
			bits[i] = '0'
		}
	}
	return "b" + string(bits) + " " + id
}
