// Package sampler implements the rate transitionner: an actor client that holds the last received sample and
// re-emits it on demand. Placed between two actors of different rates it performs decimation or zero-order hold,
// driven entirely by the enclosing actor rates.
package sampler

import (
	"github.com/mohanson/gaze"
)

// Engine holds the most recent sample of payload type P.
type Engine[P any] struct {
	last *gaze.Data[P]
}

// New returns a new Engine with an initial condition.
func New[P any](init P) *Engine[P] {
	return &Engine[P]{last: gaze.NewData(init)}
}

// Read stores the incoming sample.
func (e *Engine[P]) Read(d *gaze.Data[P]) error {
	e.last = d
	return nil
}

// Write re-emits the held sample. Samples are immutable so the same *Data is shared onwards.
func (e *Engine[P]) Write() (*gaze.Data[P], error) {
	return e.last, nil
}
