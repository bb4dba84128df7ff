// Package feedback implements an integrator and differentiator pair, the classic closed loop: the differentiator
// computes the residual between a set point and the integrator state, the integrator accumulates the gain scaled
// residual. The integrator to differentiator edge must be bootstrapped.
package feedback

import (
	"github.com/mohanson/gaze"
)

// Integrator holds n lanes of state and accumulates a gain scaled residual into lane 0. The other lanes stay zero.
type Integrator struct {
	gain float64
	mem  []float64
}

// NewIntegrator returns a new Integrator with the given gain over n lanes.
func NewIntegrator(gain float64, n int) *Integrator {
	return &Integrator{
		gain: gain,
		mem:  make([]float64, n),
	}
}

// Last returns a copy of the integrator state.
func (e *Integrator) Last() []float64 {
	r := make([]float64, len(e.mem))
	copy(r, e.mem)
	return r
}

// Read accumulates the residual into lane 0.
func (e *Integrator) Read(d *gaze.Data[float64]) error {
	e.mem[0] += d.Value() * e.gain
	return nil
}

// Write emits the lane 0 state.
func (e *Integrator) Write() (*gaze.Data[float64], error) {
	return gaze.NewData(e.mem[0]), nil
}

// Differentiator emits the difference between its set point and feedback inputs.
type Differentiator struct {
	x float64
	y float64
}

// NewDifferentiator returns a new Differentiator.
func NewDifferentiator() *Differentiator {
	return &Differentiator{}
}

// ReadSetPoint stores the set point.
func (e *Differentiator) ReadSetPoint(d *gaze.Data[float64]) error {
	e.x = d.Value()
	return nil
}

// ReadFeedback stores the fed back state.
func (e *Differentiator) ReadFeedback(d *gaze.Data[float64]) error {
	e.y = d.Value()
	return nil
}

// Write emits the residual.
func (e *Differentiator) Write() (*gaze.Data[float64], error) {
	return gaze.NewData(e.x - e.y), nil
}
