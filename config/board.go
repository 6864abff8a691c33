// Package config assembles a simulatable board: a root circuit.Node, the
// akita engine/frequency driving its sim.Simulation, an optional
// monitoring.Monitor, and an optional memory-mapped peripheral reached
// over an akita directconnection, grounded on the builder-pattern shape
// of the teacher's config.DeviceBuilder generalized from a fixed CGRA
// mesh of cores to an arbitrary user block wired to zero or one memory
// peripheral.
package config

import (
	"github.com/sarchlab/akita/v4/mem/idealmemcontroller"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/gohdl/circuit"
	gohdlsim "github.com/sarchlab/gohdl/sim"
)

// BoardBuilder assembles a Board from a user block graph plus the
// surrounding akita scaffolding (clock engine, monitor, optional memory).
type BoardBuilder struct {
	engine         sim.Engine
	freq           sim.Freq
	monitor        *monitoring.Monitor
	picosPerTick   uint64
	maxSettleIters int
	withMemory     bool
	memoryBytes    uint64
	memoryLatency  int
}

// NewBoardBuilder returns a BoardBuilder with the framework's defaults: a
// 1ns tick granularity and no memory peripheral.
func NewBoardBuilder() BoardBuilder {
	return BoardBuilder{picosPerTick: 1000, maxSettleIters: 0}
}

// WithEngine sets the akita engine driving the board's simulation.
func (b BoardBuilder) WithEngine(engine sim.Engine) BoardBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the board's tick frequency.
func (b BoardBuilder) WithFreq(freq sim.Freq) BoardBuilder {
	b.freq = freq
	return b
}

// WithMonitor attaches a monitor that observes the board's akita
// components (the Simulation and, if attached, the memory peripheral), mirroring
// DeviceBuilder.WithMonitor.
func (b BoardBuilder) WithMonitor(monitor *monitoring.Monitor) BoardBuilder {
	b.monitor = monitor
	return b
}

// WithPicosPerTick overrides the kernel's simulated-time granularity.
func (b BoardBuilder) WithPicosPerTick(picos uint64) BoardBuilder {
	b.picosPerTick = picos
	return b
}

// WithMaxSettleIters overrides the settle loop's iteration cap (0 keeps
// the kernel's built-in default).
func (b BoardBuilder) WithMaxSettleIters(n int) BoardBuilder {
	b.maxSettleIters = n
	return b
}

// WithMemory attaches an ideal memory peripheral of the given byte
// capacity and read/write latency, reachable by any block on the board
// through its own akita port, mirroring
// DeviceBuilder.createSharedMemory's "local" mode reduced to a single
// peripheral instead of one per mesh tile.
func (b BoardBuilder) WithMemory(bytes uint64, latency int) BoardBuilder {
	b.withMemory = true
	b.memoryBytes = bytes
	b.memoryLatency = latency
	return b
}

// Board is an assembled, simulatable design: the user's root block graph
// riding a sim.Simulation, plus whatever akita peripherals the builder
// attached.
type Board struct {
	Root       circuit.Node
	Simulation *gohdlsim.Simulation
	Memory     *idealmemcontroller.Comp
	memoryConn *directconnection.Comp
}

// Build wires root into a Board under name.
func (b BoardBuilder) Build(name string, root circuit.Node) *Board {
	board := &Board{Root: root}

	maxIters := b.maxSettleIters
	s := gohdlsim.New(name, b.engine, b.freq, root, b.picosPerTick)
	if maxIters > 0 {
		s.WithMaxSettleIters(maxIters)
	}
	board.Simulation = s

	if b.monitor != nil {
		b.monitor.RegisterComponent(s)
	}

	if b.withMemory {
		board.Memory = idealmemcontroller.MakeBuilder().
			WithEngine(b.engine).
			WithNewStorage(b.memoryBytes).
			WithLatency(b.memoryLatency).
			Build(name + ".Memory")

		conn := directconnection.MakeBuilder().
			WithEngine(b.engine).
			WithFreq(b.freq).
			Build(name + ".MemoryConn")
		conn.PlugIn(board.Memory.GetPortByName("Top"))
		board.memoryConn = conn

		if b.monitor != nil {
			b.monitor.RegisterComponent(board.Memory)
		}
	}

	return board
}

// PlugMemoryPort connects an akita port (typically a memory-mapped
// widget's port) to the board's memory peripheral, if one was attached.
func (b *Board) PlugMemoryPort(port sim.Port) {
	if b.memoryConn == nil {
		return
	}
	b.memoryConn.PlugIn(port)
}
