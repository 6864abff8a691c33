// Package sim implements the simulation kernel: a clocked settle loop
// over a circuit.Node graph, driven by an akita sim.Engine the same way
// the teacher's core.Core rides a sim.TickingComponent, generalized from
// one fixed 1*sim.GHz core clock to an arbitrary set of user-declared
// clocks and a settle-to-fixed-point combinational pass every tick.
package sim

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/gohdl/check"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/signal"
	"github.com/sarchlab/gohdl/trace"
)

// State is the run state of a Simulation, per spec.md §5's state
// machine.
type State int

const (
	Idle State = iota
	Settling
	Advancing
	RunningTask
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Settling:
		return "Settling"
	case Advancing:
		return "Advancing"
	case RunningTask:
		return "RunningTask"
	case Done:
		return "Done"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// defaultMaxSettleIters bounds the combinational fixed-point search
// before the kernel gives up and reports check.KindSettleLimit, per
// spec.md §7's default iteration cap.
const defaultMaxSettleIters = 1024

// Clock is a user-declared clock driven by the kernel: Signal toggles
// every HalfPeriodPicos of simulated time.
type Clock struct {
	Signal          *signal.Signal
	HalfPeriodPicos uint64

	lastTogglePicos uint64
	level           bool
}

// suspensionKind discriminates the three ways a Testbench may yield
// control back to the kernel, per spec.md §4.4's suspension contract.
type suspensionKind int

const (
	suspendWatch suspensionKind = iota
	suspendWait
	suspendFinished
)

// Suspension is what Testbench.Resume returns to describe how the task
// wants to be resumed next. Go has no native stackful coroutines, so a
// Testbench cannot block mid-function the way spec.md's prose ("suspend
// by calling watch/wait/done") literally reads; instead each Resume call
// runs host-side code to completion and returns the Suspension
// describing its next wake condition, with the Testbench itself
// responsible for remembering its own position (a small explicit state
// machine), matching SPEC_FULL.md §8's single-goroutine explicit-
// resumption design over channel-synchronized coroutines. Build one with
// Watch, Wait, or Finished.
type Suspension struct {
	kind      suspensionKind
	predicate func(*Simulation) bool
	waitPicos uint64
}

// Watch suspends the task until predicate(s) returns true immediately
// after a settle, the Go analogue of calling watch(predicate).
func Watch(predicate func(s *Simulation) bool) Suspension {
	return Suspension{kind: suspendWatch, predicate: predicate}
}

// Wait suspends the task until picos of simulated time have elapsed
// from the moment Resume returns this value, the Go analogue of
// wait(n_picos).
func Wait(picos uint64) Suspension {
	return Suspension{kind: suspendWait, waitPicos: picos}
}

// Finished terminates the task successfully, the Go analogue of done().
func Finished() Suspension {
	return Suspension{kind: suspendFinished}
}

// Testbench is a cooperative task scheduled by the simulation kernel in
// registration order, per spec.md §4.4/§5. Resume runs host-side code —
// staging signal values via .NextBool/.SetNext, inspecting committed
// .Val()s — until it is ready to yield, then returns how it wants to be
// woken. Returning a non-nil error fails the whole simulation; every
// other registered task is left exactly where it last suspended and is
// never resumed again (spec.md §5's cancellation rule).
type Testbench interface {
	Resume(s *Simulation) (Suspension, error)
}

// task wraps one registered Testbench with its current suspension
// state.
type task struct {
	tb      Testbench
	started bool
	done    bool
	wake    Suspension
	wakeAt  uint64
}

// runnable reports whether t should be resumed during the current tick:
// a task is always runnable the first time, then again once its Wait
// deadline has passed or its Watch predicate now holds.
func (t *task) runnable(s *Simulation) bool {
	if t.done {
		return false
	}
	if !t.started {
		return true
	}
	switch t.wake.kind {
	case suspendWait:
		return s.nowPicos >= t.wakeAt
	case suspendWatch:
		return t.wake.predicate(s)
	default:
		return false
	}
}

// Simulation is the kernel: it rides a sim.TickingComponent so it shares
// an akita sim.Engine with any surrounding akita components (memories,
// NoCs) a board description wires in, per spec.md §8's integration note.
type Simulation struct {
	*sim.TickingComponent

	root           circuit.Node
	clocks         []*Clock
	maxSettleIters int
	picosPerTick   uint64
	nowPicos       uint64
	tasks          []*task
	trace          *trace.VCDWriter

	state State
	err   error
}

// New creates a Simulation over root, ticking picosPerTick of simulated
// time per kernel tick (the granularity at which clocks can toggle).
func New(name string, engine sim.Engine, freq sim.Freq, root circuit.Node, picosPerTick uint64) *Simulation {
	s := &Simulation{
		root:           root,
		maxSettleIters: defaultMaxSettleIters,
		picosPerTick:   picosPerTick,
		state:          Idle,
	}
	s.TickingComponent = sim.NewTickingComponent(name, engine, freq, s)
	return s
}

// WithMaxSettleIters overrides the default combinational settle cap.
func (s *Simulation) WithMaxSettleIters(n int) *Simulation {
	s.maxSettleIters = n
	return s
}

// AddTestbench registers a testbench task, resumed alongside any
// previously registered tasks in registration order every tick, per
// spec.md §4.4's "a set of testbenches" and §5's ordering guarantee.
func (s *Simulation) AddTestbench(tb Testbench) *Simulation {
	s.tasks = append(s.tasks, &task{tb: tb})
	return s
}

// WithTrace installs a VCD sink: every tick's settled state is sampled
// to w, per spec.md §4.4's tracing requirement. namespace is stamped into
// the dump header; pass
// alloc.Namespace().String() to tell separate runs' dumps apart.
func (s *Simulation) WithTrace(w io.Writer, namespace string) *Simulation {
	s.trace = trace.NewVCDWriter(w, s.root, namespace)
	return s
}

// AddClock registers a clock signal the kernel toggles every
// halfPeriodPicos of simulated time, per spec.md §4.3's clock-generator
// design note.
func (s *Simulation) AddClock(sigClk *signal.Signal, halfPeriodPicos uint64) *Clock {
	c := &Clock{Signal: sigClk, HalfPeriodPicos: halfPeriodPicos}
	s.clocks = append(s.clocks, c)
	return c
}

// NowPicos returns the simulated time the kernel has advanced to.
func (s *Simulation) NowPicos() uint64 { return s.nowPicos }

// State returns the kernel's current run state.
func (s *Simulation) State() State { return s.state }

// Err returns the error that moved the kernel into the Failed state, if
// any.
func (s *Simulation) Err() error { return s.err }

// Tick implements sim.Ticker: it toggles due clocks, settles the
// combinational graph to a fixed point, and gives the testbench a chance
// to drive new stimulus, mirroring the teacher's core.Core.Tick loop
// generalized from one fixed instruction-fetch step to a clocked HDL
// settle step.
func (s *Simulation) Tick(now sim.VTimeInSec) (madeProgress bool) {
	if s.state == Done || s.state == Failed {
		return false
	}

	if s.trace != nil && s.nowPicos == 0 {
		if err := s.trace.WriteHeader("1ps"); err != nil {
			s.state = Failed
			s.err = check.NewIOErrorErr(err)
			return false
		}
	}

	s.state = Advancing
	s.nowPicos += s.picosPerTick
	for _, c := range s.clocks {
		if s.nowPicos-c.lastTogglePicos >= c.HalfPeriodPicos {
			c.lastTogglePicos = s.nowPicos
			c.level = !c.level
			// Stage only: settle's first UpdateAll call commits Input
			// signals (this one included) before root.Update runs, so
			// PosEdge sees the toggle in that same call. Committing here
			// too would clear the changed flag a call early.
			c.Signal.NextBool(c.level)
		}
	}

	if len(s.tasks) > 0 {
		s.state = RunningTask
		allDone, err := s.resumeTestbenches()
		if err != nil {
			s.state = Failed
			s.err = err
			return false
		}
		if allDone {
			s.state = Done
			return false
		}
	}

	if err := s.settle(); err != nil {
		s.state = Failed
		s.err = err
		return false
	}

	if s.trace != nil {
		if err := s.trace.Sample(s.nowPicos); err != nil {
			s.state = Failed
			s.err = check.NewIOErrorErr(err)
			return false
		}
	}

	s.state = Idle
	return true
}

// resumeTestbenches resumes every registered task that is runnable this
// tick, in registration order, per spec.md §5's ordering guarantee. If a
// task's Resume returns an error, resumption stops immediately: the
// tasks not yet reached this tick are left at their last suspension
// point and never resumed again, matching spec.md §5's cancellation
// rule ("the remaining tasks are dropped at their last suspension
// point"). allDone is true only when every registered task has called
// Finished(); with zero tasks registered there is nothing to ever
// finish, so a Simulation with no testbench at all never reports Done on
// its own and relies on its caller's timeout budget.
func (s *Simulation) resumeTestbenches() (allDone bool, err error) {
	allDone = true
	for _, t := range s.tasks {
		if t.done {
			continue
		}
		if !t.runnable(s) {
			allDone = false
			continue
		}
		t.started = true
		suspension, rerr := t.tb.Resume(s)
		if rerr != nil {
			return false, rerr
		}
		switch suspension.kind {
		case suspendFinished:
			t.done = true
		default:
			t.wake = suspension
			if suspension.kind == suspendWait {
				t.wakeAt = s.nowPicos + suspension.waitPicos
			}
			allDone = false
		}
	}
	return allDone, nil
}

// Assert reports a check.KindSimAssertFailed error when ok is false, for
// use inside a Testbench.Resume implementation: return the error from
// Resume to fail the whole simulation, per spec.md's SimAssertFailed
// kind. path identifies the signal or condition under test (e.g.
// "uut.Out"), message is a human-readable description of what failed.
func Assert(ok bool, path, message string) error {
	if ok {
		return nil
	}
	return check.NewSimAssertFailedErr(path, message)
}

// settle repeatedly calls root.UpdateAll until a tick produces no
// further change, the fixed-point convergence rule from spec.md §4.3.
// Exceeding maxSettleIters is a static-looking but runtime failure
// (check.KindSettleLimit), since a real loop may only manifest for
// certain input combinations that CheckLogicLoops' textual scan misses.
func (s *Simulation) settle() error {
	s.state = Settling
	for i := 0; i < s.maxSettleIters; i++ {
		if !s.root.UpdateAll() {
			return nil
		}
	}
	return check.NewSettleLimitErr("uut")
}

// RunUntilDone repeatedly calls Tick directly (the akita engine is not
// run) until every
// registered testbench reports completion or the tick budget in picos is
// spent, returning check.KindTimeoutExceeded if neither happens in time.
func (s *Simulation) RunUntilDone(budgetPicos uint64) error {
	for s.nowPicos < budgetPicos {
		s.Tick(sim.VTimeInSec(0))
		switch s.state {
		case Done:
			return nil
		case Failed:
			return s.err
		}
	}
	return check.NewTimeoutExceededErr(budgetPicos)
}
