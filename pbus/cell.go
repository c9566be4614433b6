package pbus

import (
	"errors"
	"math"
	"sync/atomic"
	"weak"
)

// ErrDisconnected is returned by Writer.Write once the reader side is
// closed or has been garbage collected.
var ErrDisconnected = errors.New("pbus: reader disconnected")

// cell is a two slot value holder. The flag names the slot holding the
// current value; the writer fills the other slot and then flips the flag,
// so a reader never observes a half written value.
type cell struct {
	slots  [2]atomic.Uint64
	flag   atomic.Bool
	closed atomic.Bool
}

func newCell(initial float64) *cell {
	c := &cell{}
	bits := math.Float64bits(initial)
	c.slots[0].Store(bits)
	c.slots[1].Store(bits)
	return c
}

// set must only ever be called by the single Writer of c.
func (c *cell) set(v float64) {
	next := 1
	if c.flag.Load() {
		next = 0
	}
	c.slots[next].Store(math.Float64bits(v))
	c.flag.Store(next == 1)
}

func (c *cell) get() float64 {
	if c.flag.Load() {
		return math.Float64frombits(c.slots[1].Load())
	}
	return math.Float64frombits(c.slots[0].Load())
}

// Writer is the single producer side of a cell. It does not keep the
// cell alive.
type Writer struct {
	c weak.Pointer[cell]
}

// Write stores v. It fails with ErrDisconnected when the reader is gone.
func (w *Writer) Write(v float64) error {
	c := w.c.Value()
	if c == nil || c.closed.Load() {
		return ErrDisconnected
	}
	c.set(v)
	return nil
}

// Reader is the consumer side of a cell. Any number of goroutines may
// call Value concurrently.
type Reader struct {
	c *cell
}

// Value returns the latest value, or the one just before it when a write
// is in flight.
func (r *Reader) Value() float64 { return r.c.get() }

// Close detaches r from its writer. The bus drops the writer on the next
// publish.
func (r *Reader) Close() { r.c.closed.Store(true) }

// Link creates a connected writer/reader pair holding initial. It is the
// only way to obtain a Writer, so a cell never has two.
func Link(initial float64) (*Writer, *Reader) {
	c := newCell(initial)
	return &Writer{c: weak.Make(c)}, &Reader{c: c}
}
