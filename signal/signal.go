// Package signal implements the Signal atom: a single wire with a
// direction, a current/staged value pair, and a unique identity, grounded
// on the claimed/connected contract of the teacher's core/port.go and the
// Signal<D,T> type of the upstream RustHDL signal.rs.
package signal

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/check"
	"github.com/sarchlab/gohdl/circuit"
)

// IDAllocator mints unique signal ids scoped to one simulation/graph,
// per spec.md §9's "per-simulation monotonic counter" design note (the
// teacher's upstream signal.rs uses a process-global AtomicUsize; this
// reimplementation deliberately does not, so concurrent test processes
// stay isolated and trace ids are stable run to run). It additionally
// mints an xid namespace on first use, letting ids from two different
// runs be told apart (and sorted by mint time) even though each run's own
// per-signal counter restarts at 1.
type IDAllocator struct {
	namespace xid.ID
	next      uint64
}

// Next returns the next unique id, starting at 1.
func (a *IDAllocator) Next() uint64 {
	if a.namespace.IsNil() {
		a.namespace = xid.New()
	}
	a.next++
	return a.next
}

// Namespace returns the allocator's run-scoped xid, minting it on first
// use. Used by trace.VCDWriter to stamp a stable, sortable run identifier
// into the dump header's $comment section.
func (a *IDAllocator) Namespace() xid.ID {
	if a.namespace.IsNil() {
		a.namespace = xid.New()
	}
	return a.namespace
}

// Signal is a single wire in the block graph. It implements both
// circuit.Node and circuit.Atom: a Signal is itself a (leaf) node of the
// block graph.
type Signal struct {
	Domain circuit.Domain

	dir circuit.Direction
	id  uint64

	val, next, prev bitvec.Value
	changed         bool
	claimed         bool
}

// New creates an unclaimed signal of the given width and direction, with
// its id minted from alloc.
func New(alloc *IDAllocator, direction circuit.Direction, width int) *Signal {
	z := bitvec.Zero(width)
	return &Signal{
		dir:  direction,
		id:   alloc.Next(),
		val:  z,
		next: z,
		prev: z,
	}
}

// NewWithDefault creates an unclaimed signal whose initial val/prev is
// init rather than zero, mirroring Signal::new_with_default for Output
// signals with a reset value.
func NewWithDefault(alloc *IDAllocator, direction circuit.Direction, init bitvec.Value) *Signal {
	return &Signal{
		dir:     direction,
		id:      alloc.Next(),
		val:     init,
		next:    bitvec.Zero(init.Width),
		prev:    init,
		changed: true,
	}
}

// ID returns the signal's unique identity within its owning simulation.
func (s *Signal) ID() uint64 { return s.id }

// ClockDomain returns the signal's Domain tag, implementing
// circuit.DomainAtom.
func (s *Signal) ClockDomain() circuit.Domain { return s.Domain }

// Width returns the bit width of the signal.
func (s *Signal) Width() int { return s.val.Width }

// Dir returns the signal's direction relative to its owning block.
func (s *Signal) Dir() circuit.Direction { return s.dir }

// Val returns the currently committed value. Read-only from outside the
// owning block by convention (Go cannot enforce this at compile time).
func (s *Signal) Val() bitvec.Value { return s.val }

// Prev returns the value committed on the previous settle, used for edge
// detection on clocks.
func (s *Signal) Prev() bitvec.Value { return s.prev }

// SetNext stages a new value to be committed on the next settle. Must
// only be called by the owning block's Update.
func (s *Signal) SetNext(v bitvec.Value) {
	if v.Width != s.val.Width {
		panic(fmt.Sprintf("signal: width mismatch assigning %d-bit value to %d-bit signal %d", v.Width, s.val.Width, s.id))
	}
	s.next = v
}

// NextBool is a convenience for width-1 signals.
func (s *Signal) NextBool(v bool) { s.SetNext(bitvec.FromBool(v)) }

// Changed reports whether val != next was detected on the last Commit.
func (s *Signal) Changed() bool { return s.changed }

// Claimed reports whether Connect has already been called on this signal.
func (s *Signal) Claimed() bool { return s.claimed }

// Connect marks the signal as driven. Per spec.md §3.2, a driven signal
// must be claimed at most once; calling it twice is a build-time failure
// value, not a panic — all failures in this framework are values (per
// spec.md's error-handling invariant), so a second driver is reported as
// a *check.Error{Kind: KindMultipleDrivers} the same way any other static
// check failure is, rather than crashing the process that happens to
// connect it.
func (s *Signal) Connect() error {
	if s.claimed {
		return check.NewMultipleDriversErr(s.id)
	}
	s.claimed = true
	return nil
}

// ConnectAll implements circuit.Node. A signal has no children; its own
// connection step claims itself automatically unless it is an Input
// (Inputs are claimed by the parent block that drives them, via the
// parent's circuit.Connecter hook). Idempotent, per spec.md §8's
// connection-idempotence invariant.
func (s *Signal) ConnectAll() error {
	if s.dir != circuit.Input && !s.claimed {
		return s.Connect()
	}
	return nil
}

// UpdateAll implements circuit.Node by committing the staged next value.
func (s *Signal) UpdateAll() bool {
	return s.Commit()
}

// Commit copies the staged next value into val/prev and recomputes
// changed. Returns whether the value actually changed, so the owning
// settle loop can track fixed-point convergence.
func (s *Signal) Commit() bool {
	s.changed = !s.val.Eq(s.next)
	if s.changed {
		s.prev = s.val
		s.val = s.next
	}
	return s.changed
}

// Accept implements circuit.Node's visitor entry point for a leaf atom.
func (s *Signal) Accept(name string, p circuit.Probe) {
	p.VisitAtom(name, s)
}

// PosEdge is true for exactly the settle iteration that committed a
// 0->1 transition; defined only for width-1 signals used as clocks.
func (s *Signal) PosEdge() bool {
	return s.changed && s.val.Bool() && !s.prev.Bool()
}

// NegEdge is the 1->0 analogue of PosEdge.
func (s *Signal) NegEdge() bool {
	return s.changed && !s.val.Bool() && s.prev.Bool()
}

var (
	_ circuit.Node       = (*Signal)(nil)
	_ circuit.Atom       = (*Signal)(nil)
	_ circuit.DomainAtom = (*Signal)(nil)
)
