// Package signal implements the signal generators used to drive a model: deterministic wave forms, white noise, and
// sums of both. The engine is an initiator client emitting one vector sample per base tick until its step count is
// spent.
package signal

import (
	"math"
	"math/rand/v2"

	"github.com/mohanson/gaze"
	"github.com/mohanson/gaze/lib/pretty"
)

// A Signal yields one value per step of the base clock.
type Signal interface {
	Get(i int) float64
}

// Constant is a constant signal.
type Constant float64

// Get implements signal.Signal.
func (s Constant) Get(i int) float64 {
	return float64(s)
}

// Sinusoid is a pure tone.
type Sinusoid struct {
	Amplitude           float64
	SamplingFrequencyHz float64
	FrequencyHz         float64
	PhaseS              float64
}

// Get implements signal.Signal.
func (s Sinusoid) Get(i int) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*(s.PhaseS+float64(i)*s.FrequencyHz/s.SamplingFrequencyHz))
}

// Ramp is the line y = a*i + b.
type Ramp struct {
	A float64
	B float64
}

// Get implements signal.Signal.
func (s Ramp) Get(i int) float64 {
	return s.A*float64(i) + s.B
}

// Sigmoid rises smoothly from zero to its amplitude.
type Sigmoid struct {
	Amplitude           float64
	SamplingFrequencyHz float64
}

// Get implements signal.Signal.
func (s Sigmoid) Get(i int) float64 {
	u := float64(i)/s.SamplingFrequencyHz - 0.75
	r := 1 / (1 + math.Exp(-5*u))
	return s.Amplitude * r * r
}

// Noise is gaussian white noise.
type Noise struct {
	Mean   float64
	StdDev float64
}

// Get implements signal.Signal.
func (s Noise) Get(i int) float64 {
	return rand.NormFloat64()*s.StdDev + s.Mean
}

// Composite sums its parts.
type Composite []Signal

// Get implements signal.Signal.
func (s Composite) Get(i int) float64 {
	r := 0.0
	for _, e := range s {
		r += e.Get(i)
	}
	return r
}

// Engine emits size parallel signals for nstep base ticks, then exhausts.
type Engine struct {
	signals []Signal
	step    int
	nstep   int
	bar     bool
}

// New creates size null constant signals valid for nstep iterations.
func New(size int, nstep int) *Engine {
	signals := make([]Signal, size)
	for i := range signals {
		signals[i] = Constant(0)
	}
	return &Engine{
		signals: signals,
		nstep:   nstep,
	}
}

// FromData creates one constant signal per element of data.
func FromData(data []float64, nstep int) *Engine {
	e := New(len(data), nstep)
	for i, v := range data {
		e.signals[i] = Constant(v)
	}
	return e
}

// Signals sets the same signal on every output.
func (e *Engine) Signals(s Signal) *Engine {
	for i := range e.signals {
		e.signals[i] = s
	}
	return e
}

// OutputSignal sets the signal of output k.
func (e *Engine) OutputSignal(k int, s Signal) *Engine {
	e.signals[k] = s
	return e
}

// Progress draws a progress bar while the engine runs.
func (e *Engine) Progress() *Engine {
	e.bar = true
	return e
}

// Update implements gaze.Updater.
func (e *Engine) Update() error {
	if e.bar {
		pretty.PrintProgress(min(float64(e.step)/float64(e.nstep), 1))
	}
	return nil
}

// Write emits the sample of the current step, or nil once nstep samples were produced.
func (e *Engine) Write() (*gaze.Data[[]float64], error) {
	if e.step >= e.nstep {
		return nil, nil
	}
	r := make([]float64, len(e.signals))
	for i, s := range e.signals {
		r[i] = s.Get(e.step)
	}
	e.step++
	return gaze.NewData(r), nil
}

// WriteOne emits signal 0 as a scalar sample, or nil once nstep samples were produced. Wire one engine through
// either Write or WriteOne, not both: each advances the step.
func (e *Engine) WriteOne() (*gaze.Data[float64], error) {
	if e.step >= e.nstep {
		return nil, nil
	}
	v := e.signals[0].Get(e.step)
	e.step++
	return gaze.NewData(v), nil
}

// Check interface implementation.
var (
	_ Signal = Composite(nil)
	_ Signal = Constant(0)
	_ Signal = Noise{}
	_ Signal = Ramp{}
	_ Signal = Sigmoid{}
	_ Signal = Sinusoid{}
)
