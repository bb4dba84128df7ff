// Package logging implements an appending terminator. Every received sample is recorded flat; the final data is
// read back through the actor guard once the model has drained. A bounded variant keeps only the most recent
// records.
package logging

import (
	"github.com/godump/lru"
	"github.com/mohanson/gaze"
)

// Engine records every sample delivered to it.
type Engine struct {
	data  []float64
	width int
	nrec  int
	keep  int
	tail  *lru.Lru[int, []float64]
}

// New returns an unbounded recorder.
func New() *Engine {
	return &Engine{}
}

// NewTail returns a recorder keeping only the most recent keep records.
func NewTail(keep int) *Engine {
	return &Engine{
		keep: keep,
		tail: lru.New[int, []float64](keep),
	}
}

// Logn declares the record width and wires w into the sink. Sugar for Into on a logging terminator.
func Logn(w *gaze.Wire[[]float64], sink *gaze.Actor[Engine], n int) error {
	sink.Sync(func(e *Engine) { e.width = n })
	return gaze.Into(w, sink, (*Engine).Read)
}

func (e *Engine) push(r []float64) {
	if e.keep != 0 {
		c := make([]float64, len(r))
		copy(c, r)
		e.tail.Set(e.nrec, c)
	} else {
		e.data = append(e.data, r...)
	}
	e.nrec++
}

// Read appends one vector sample as one record.
func (e *Engine) Read(d *gaze.Data[[]float64]) error {
	r := d.Value()
	if e.width == 0 {
		e.width = len(r)
	}
	e.push(r)
	return nil
}

// ReadOne appends one scalar sample as one record.
func (e *Engine) ReadOne(d *gaze.Data[float64]) error {
	if e.width == 0 {
		e.width = 1
	}
	e.push([]float64{d.Value()})
	return nil
}

// Len returns the number of records received.
func (e *Engine) Len() int {
	return e.nrec
}

// Data returns the flat recording. Empty in tail mode.
func (e *Engine) Data() []float64 {
	return e.data
}

// Record returns record i, or nil when it was evicted or never received.
func (e *Engine) Record(i int) []float64 {
	if e.keep != 0 {
		r, b := e.tail.GetExists(i)
		if !b {
			return nil
		}
		return r
	}
	if i < 0 || (i+1)*e.width > len(e.data) {
		return nil
	}
	return e.data[i*e.width : (i+1)*e.width]
}
