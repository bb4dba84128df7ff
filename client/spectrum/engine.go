// Package spectrum computes the windowed spectrum magnitude of a scalar signal. The engine keeps a sliding window
// of the incoming samples and emits the Hann windowed FFT magnitude on every tick.
package spectrum

import (
	"math/cmplx"

	"github.com/godump/doa"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/mohanson/gaze"
)

// Engine slides a window of size samples over a scalar signal.
type Engine struct {
	buf  []float64
	size int
}

// New returns a new Engine. The window size must be a power of two.
func New(size int) *Engine {
	doa.Doa(size > 0 && size&(size-1) == 0)
	return &Engine{size: size}
}

// Read pushes one sample into the window.
func (e *Engine) Read(d *gaze.Data[float64]) error {
	e.buf = append(e.buf, d.Value())
	if len(e.buf) > e.size {
		e.buf = e.buf[len(e.buf)-e.size:]
	}
	return nil
}

// Write emits the Hann windowed FFT magnitude of the current window. The emitted vector has size/2+1 bins. A not
// yet filled window is zero padded on the left.
func (e *Engine) Write() (*gaze.Data[[]float64], error) {
	x := make([]float64, e.size)
	copy(x[e.size-len(e.buf):], e.buf)
	// window.Apply mutates x in place.
	window.Apply(x, window.Hann)
	c := fft.FFTReal(x)
	r := make([]float64, e.size/2+1)
	for i := range r {
		r[i] = cmplx.Abs(c[i])
	}
	return gaze.NewData(r), nil
}
