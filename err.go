package gaze

import (
	"sync"
)

// Err keeps the first error put into it and discards the rest. The zero value is not usable, call NewErr.
type Err struct {
	on  sync.Once
	sig chan struct{}
	err error
}

// Get returns the stored error, or nil when no error was put yet.
func (e *Err) Get() error {
	select {
	case <-e.sig:
		return e.err
	default:
		return nil
	}
}

// Put stores err. Only the first call has an effect.
func (e *Err) Put(err error) {
	e.on.Do(func() {
		e.err = err
		close(e.sig)
	})
}

// Sig is closed as soon as an error has been put.
func (e *Err) Sig() <-chan struct{} {
	return e.sig
}

// NewErr returns a new Err.
func NewErr() *Err {
	return &Err{sig: make(chan struct{})}
}
