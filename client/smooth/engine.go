// Package smooth scales a vector signal with a time varying scalar weight. Feed the weight from a slow sigmoid to
// ramp a disturbance in gently, or from any other scalar signal.
package smooth

import (
	"github.com/mohanson/gaze"
)

// Engine multiplies the latest data vector by the latest weight.
type Engine struct {
	weight float64
	data   []float64
}

// New returns a new Engine with weight zero.
func New() *Engine {
	return &Engine{}
}

// ReadWeight stores the scalar weight.
func (e *Engine) ReadWeight(d *gaze.Data[float64]) error {
	e.weight = d.Value()
	return nil
}

// ReadData stores the data vector.
func (e *Engine) ReadData(d *gaze.Data[[]float64]) error {
	e.data = d.Value()
	return nil
}

// Write emits the weighted vector.
func (e *Engine) Write() (*gaze.Data[[]float64], error) {
	r := make([]float64, len(e.data))
	for i, v := range e.data {
		r[i] = v * e.weight
	}
	return gaze.NewData(r), nil
}
