package widgets

import (
	"github.com/sarchlab/gohdl/bitvec"
	"github.com/sarchlab/gohdl/circuit"
	"github.com/sarchlab/gohdl/hdlir"
	"github.com/sarchlab/gohdl/signal"
)

// SyncFIFO is a synchronous, power-of-two-depth FIFO, grounded on the
// upstream rust-hdl-test SyncFIFO/SynchronousFIFO fixtures: Write/DataIn
// on the write side, Read/DataOut on the read side, Full/Empty/
// AlmostEmpty/AlmostFull status, and sticky Overflow/Underflow flags
// that latch once tripped (matching the upstream's behavior of never
// auto-clearing them within a run).
type SyncFIFO struct {
	circuit.BlockBase

	Clock *signal.Signal

	DataIn *signal.Signal
	Write  *signal.Signal
	Full   *signal.Signal

	DataOut     *signal.Signal
	Read        *signal.Signal
	Empty       *signal.Signal
	AlmostEmpty *signal.Signal
	AlmostFull  *signal.Signal

	Overflow  *signal.Signal
	Underflow *signal.Signal

	depth int
	data  []bitvec.Value
	head  int // next read position
	tail  int // next write position
	count int
}

// NewSyncFIFO builds a SyncFIFO holding up to depth words of dataWidth
// bits each. depth must be a power of two.
func NewSyncFIFO(alloc *signal.IDAllocator, dataWidth, depth int) *SyncFIFO {
	if depth <= 0 || depth&(depth-1) != 0 {
		panic("widgets: SyncFIFO depth must be a positive power of two")
	}
	f := &SyncFIFO{
		Clock:       signal.New(alloc, circuit.Input, 1),
		DataIn:      signal.New(alloc, circuit.Input, dataWidth),
		Write:       signal.New(alloc, circuit.Input, 1),
		Full:        signal.New(alloc, circuit.Output, 1),
		DataOut:     signal.New(alloc, circuit.Output, dataWidth),
		Read:        signal.New(alloc, circuit.Input, 1),
		Empty:       signal.New(alloc, circuit.Output, 1),
		AlmostEmpty: signal.New(alloc, circuit.Output, 1),
		AlmostFull:  signal.New(alloc, circuit.Output, 1),
		Overflow:    signal.New(alloc, circuit.Output, 1),
		Underflow:   signal.New(alloc, circuit.Output, 1),
		depth:       depth,
		data:        make([]bitvec.Value, depth),
	}
	for i := range f.data {
		f.data[i] = bitvec.Zero(dataWidth)
	}
	f.Init(f)
	return f
}

// Update recomputes the status outputs and DataOut on every call and
// performs the fill/drain on each clock posedge. A simultaneous
// read+write in the same cycle is legal (classic FIFO through-traffic)
// and leaves the occupancy count unchanged, except when the FIFO is full
// (the write is dropped and Overflow latches) or empty (the read is
// dropped and Underflow latches).
func (f *SyncFIFO) Update() {
	f.Empty.NextBool(f.count == 0)
	f.Full.NextBool(f.count == f.depth)
	f.AlmostEmpty.NextBool(f.count <= 1)
	f.AlmostFull.NextBool(f.count >= f.depth-1)
	if f.count > 0 {
		f.DataOut.SetNext(f.data[f.head])
	}

	if !f.Clock.PosEdge() {
		return
	}

	doWrite := f.Write.Val().Bool() && f.count < f.depth
	doRead := f.Read.Val().Bool() && f.count > 0

	if f.Write.Val().Bool() && f.count == f.depth {
		f.Overflow.NextBool(true)
	}
	if f.Read.Val().Bool() && f.count == 0 {
		f.Underflow.NextBool(true)
	}

	if doWrite {
		f.data[f.tail] = f.DataIn.Val()
		f.tail = (f.tail + 1) % f.depth
	}
	if doRead {
		f.head = (f.head + 1) % f.depth
	}
	switch {
	case doWrite && !doRead:
		f.count++
	case doRead && !doWrite:
		f.count--
	}
}

// Describe reports the FIFO as a sequential block backed entirely by a
// hand-written wrapper: its storage is a Go slice, not an IR-expressible
// register file, so it is opaque to both the loop checker and the
// emitter's statement renderer, per spec.md §9's wrapper design note.
func (f *SyncFIFO) Describe() hdlir.Module {
	return hdlir.Module{
		Behavior: hdlir.Sequential,
		Wrapper: &hdlir.Wrapper{
			Body:       "    // SyncFIFO: behavioral memory, synthesized from a vendor FIFO primitive\n",
			BlackBoxes: []string{"sync_fifo_ram"},
		},
	}
}

var (
	_ circuit.Node    = (*SyncFIFO)(nil)
	_ hdlir.Describer = (*SyncFIFO)(nil)
)
