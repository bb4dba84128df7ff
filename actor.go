package gaze

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

// Updater is implemented by clients that mutate internal state once per tick. Clients without internal dynamics may
// simply not implement it.
type Updater interface {
	Update() error
}

// Actor wraps a client and runs its read, update, write loop as a cooperative task. NI and NO are the input and
// output rates in ticks of the common base clock: an actor reads one sample on every input each NI base ticks and
// writes one sample on every output each NO base ticks. NI = 0 makes an initiator, NO = 0 a terminator.
type Actor[C any] struct {
	client *C
	mu     sync.Mutex // Guards client
	upd    Updater
	m      Meta
	ins    []input
	outs   []output
	sealed bool
}

// NewActor returns a new Actor around client with input rate ni and output rate no. The name is a diagnostic label
// carried by flowcharts and errors.
func NewActor[C any](client *C, ni int, no int, name string) *Actor[C] {
	if ni < 0 || no < 0 {
		log.Panicln("gaze: negative rate on actor", name)
	}
	a := &Actor[C]{
		client: client,
		m:      Meta{Name: name, NI: ni, NO: no},
	}
	a.upd, _ = any(client).(Updater)
	return a
}

// NewInitiator returns a new source actor: no inputs, output rate no.
func NewInitiator[C any](client *C, no int, name string) *Actor[C] {
	return NewActor(client, 0, no, name)
}

// NewTerminator returns a new sink actor: input rate ni, no outputs.
func NewTerminator[C any](client *C, ni int, name string) *Actor[C] {
	return NewActor(client, ni, 0, name)
}

// Sync runs f with exclusive access to the actor client. Use it to read final state out of a sink after Model.Wait
// returned.
func (a *Actor[C]) Sync(f func(*C)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f(a.client)
}

// gather awaits one sample on every input and delivers each to the client under the actor guard. Delivery order
// between inputs is unspecified. Returns io.EOF when any upstream producer exhausted.
func (a *Actor[C]) gather() error {
	if len(a.ins) == 1 {
		return a.ins[0].recv()
	}
	e := NewErr()
	wg := sync.WaitGroup{}
	for _, i := range a.ins {
		wg.Add(1)
		go func(i input) {
			defer wg.Done()
			if err := i.recv(); err != nil {
				e.Put(err)
			}
		}(i)
	}
	wg.Wait()
	return e.Get()
}

// update invokes the client state update when the client implements Updater.
func (a *Actor[C]) update() error {
	if a.upd == nil {
		return nil
	}
	a.mu.Lock()
	err := a.upd.Update()
	a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("gaze: update: %w", err)
	}
	return nil
}

// scatter asks the client for one sample per open output port and fans each out as a joined send. Returns io.EOF
// once every output port is exhausted.
func (a *Actor[C]) scatter(m *Model) error {
	live := 0
	a.mu.Lock()
	var werr error
	for _, o := range a.outs {
		if o.closed() {
			continue
		}
		ok, err := o.write()
		if err != nil {
			werr = err
			break
		}
		if ok {
			live++
		}
	}
	a.mu.Unlock()
	if werr != nil {
		return werr
	}
	if live == 0 {
		return io.EOF
	}
	if len(a.outs) == 1 {
		return a.outs[0].flush(m.dn)
	}
	e := NewErr()
	wg := sync.WaitGroup{}
	for _, o := range a.outs {
		wg.Add(1)
		go func(o output) {
			defer wg.Done()
			if err := o.flush(m.dn); err != nil {
				e.Put(err)
			}
		}(o)
	}
	wg.Wait()
	return e.Get()
}

// shutdown closes every output port, cascading io.EOF downstream, and releases every upstream producer.
func (a *Actor[C]) shutdown() {
	for _, o := range a.outs {
		o.halt()
	}
	for _, i := range a.ins {
		i.drop()
	}
}

// loop is the actor schedule. With both rates set, the slower side is grouped: a downsampler (NO > NI) reads NO/NI
// inputs per written output, writing on the first tick of each group; an upsampler (NI > NO) writes NI/NO outputs
// per read input, repeating the held sample.
func (a *Actor[C]) loop(m *Model) error {
	ni, no := a.m.NI, a.m.NO
	switch {
	case ni == 0:
		for {
			if err := a.update(); err != nil {
				return err
			}
			if err := a.scatter(m); err != nil {
				return err
			}
		}
	case no == 0:
		for {
			if err := a.gather(); err != nil {
				return err
			}
			if err := a.update(); err != nil {
				return err
			}
		}
	case no >= ni:
		n := no / ni
		for {
			if err := a.gather(); err != nil {
				return err
			}
			if err := a.update(); err != nil {
				return err
			}
			if err := a.scatter(m); err != nil {
				return err
			}
			for i := 1; i < n; i++ {
				if err := a.gather(); err != nil {
					return err
				}
				if err := a.update(); err != nil {
					return err
				}
			}
		}
	default:
		n := ni / no
		for {
			if err := a.gather(); err != nil {
				return err
			}
			if err := a.update(); err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if err := a.scatter(m); err != nil {
					return err
				}
			}
		}
	}
}

// run drives the loop to completion and sorts its outcome: graceful exhaustion, absorbed shutdown closure, or a
// fatal error published to the model.
func (a *Actor[C]) run(m *Model) error {
	if Conf.Verbose {
		log.Printf("gaze: %s spawn", a.m.Name)
	}
	defer a.shutdown()
	err := a.loop(m)
	switch {
	case err == nil || errors.Is(err, io.EOF):
		m.drain.Store(true)
		if Conf.Verbose {
			log.Printf("gaze: %s exhausted", a.m.Name)
		}
		return nil
	case errors.Is(err, ErrChannelClosed) && m.drain.Load():
		if Conf.Verbose {
			log.Printf("gaze: %s closed", a.m.Name)
		}
		return nil
	default:
		err = fmt.Errorf("gaze: actor %s: %w", a.m.Name, err)
		m.drain.Store(true)
		m.err.Put(err)
		log.Printf("gaze: %s error %s", a.m.Name, err)
		return err
	}
}

// verify checks the actor local invariants before the model runs.
func (a *Actor[C]) verify() error {
	switch {
	case a.m.NI == 0 && a.m.NO == 0:
		return fmt.Errorf("%w: actor %s has no ports", ErrTopology, a.m.Name)
	case a.m.NI > 0 && len(a.ins) == 0:
		return fmt.Errorf("%w: actor %s has dangling inputs", ErrTopology, a.m.Name)
	case a.m.NO > 0 && len(a.outs) == 0:
		return fmt.Errorf("%w: actor %s has dangling outputs", ErrTopology, a.m.Name)
	case a.m.NI > 0 && a.m.NO > 0 && a.m.NO%a.m.NI != 0 && a.m.NI%a.m.NO != 0:
		return fmt.Errorf("%w: rate %d:%d on actor %s", ErrTopology, a.m.NI, a.m.NO, a.m.Name)
	}
	for _, o := range a.outs {
		if len(o.edges(&a.m)) == 0 {
			return fmt.Errorf("%w: actor %s has an unconnected output", ErrTopology, a.m.Name)
		}
	}
	seen := map[uint64]string{}
	for _, i := range a.ins {
		t := i.who()
		if _, b := seen[t.Hash]; b {
			return fmt.Errorf("%w: duplicate input %s on actor %s", ErrTopology, t.Name, a.m.Name)
		}
		seen[t.Hash] = t.Name
	}
	return nil
}

func (a *Actor[C]) meta() *Meta {
	return &a.m
}

func (a *Actor[C]) seal() {
	a.sealed = true
}

func (a *Actor[C]) flow() []EdgeInfo {
	r := []EdgeInfo{}
	for _, o := range a.outs {
		r = append(r, o.edges(&a.m)...)
	}
	return r
}

// Check interface implementation.
var _ Node = (*Actor[struct{}])(nil)
