package gaze

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// pipe is one wired edge: a FIFO of shared samples between exactly one producer port and one consumer port. The
// default shape is a capacity 1 channel, giving rendezvous back-pressure. An unbounded pipe decouples the two sides
// with a pump goroutine holding an in-memory backlog. A bootstrapped pipe starts with one zero value sample already
// queued, which is the only mechanism that breaks feedback loop startup.
type pipe[P any] struct {
	tag   *Tag
	tx    chan *Data[P] // producer side
	rx    chan *Data[P] // consumer side, same channel unless unbounded
	dn    chan struct{} // closed when the consumer stops reading
	dnone sync.Once
	txone sync.Once
	boot  bool
	unbnd bool
}

func newPipe[P any](tag *Tag, unbnd bool, boot bool) *pipe[P] {
	p := &pipe[P]{
		tag:   tag,
		tx:    make(chan *Data[P], 1),
		dn:    make(chan struct{}),
		boot:  boot,
		unbnd: unbnd,
	}
	if unbnd {
		p.rx = make(chan *Data[P])
		go p.pump()
	} else {
		p.rx = p.tx
	}
	if boot {
		var zero P
		p.tx <- NewData(zero)
	}
	return p
}

// pump moves samples from the producer side to the consumer side through an unbounded backlog.
func (p *pipe[P]) pump() {
	var box []*Data[P]
	var hot = false
	in := p.tx
	for in != nil || len(box) != 0 {
		var out chan *Data[P]
		var head *Data[P]
		if len(box) != 0 {
			out = p.rx
			head = box[0]
		}
		select {
		case d, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			box = append(box, d)
			if !hot && len(box) > Conf.UnboundedWarn {
				hot = true
				log.Printf("gaze: %s unbounded backlog exceeds %d", p.tag.Name, Conf.UnboundedWarn)
			}
		case out <- head:
			box = box[1:]
		case <-p.dn:
			return
		}
	}
	close(p.rx)
}

// send blocks until the pipe has room for the sample: on a capacity 1 pipe, until the consumer took the previous one.
// The returned error is ErrChannelClosed when the consumer went away or when dn was closed in the meantime.
func (p *pipe[P]) send(d *Data[P], dn <-chan struct{}) error {
	select {
	case p.tx <- d:
		return nil
	case <-p.dn:
		return ErrChannelClosed
	case <-dn:
		return ErrChannelClosed
	}
}

// recv returns the next sample, or io.EOF once the producer closed the pipe and the backlog drained.
func (p *pipe[P]) recv() (*Data[P], error) {
	d, ok := <-p.rx
	if !ok {
		return nil, io.EOF
	}
	return d, nil
}

// halt closes the producer side, propagating io.EOF downstream. Safe to call more than once.
func (p *pipe[P]) halt() {
	p.txone.Do(func() { close(p.tx) })
}

// drop releases the producer once the consumer stops reading. Safe to call more than once.
func (p *pipe[P]) drop() {
	p.dnone.Do(func() { close(p.dn) })
}

// Meta describes an actor for diagnostics and topology checks.
type Meta struct {
	Name string
	NI   int
	NO   int
}

// EdgeInfo is one wired edge as seen by Model.Check and Model.Flowchart.
type EdgeInfo struct {
	Producer  *Meta
	Consumer  *Meta
	Uid       *Tag
	Rate      int
	Bootstrap bool
	Unbounded bool
}

// input is the erased receive half of one wired edge.
type input interface {
	// recv awaits one sample and delivers it to the client under the actor guard.
	recv() error
	// drop releases the upstream producer.
	drop()
	// who returns the uid tag of the edge.
	who() *Tag
}

// output is the erased send half of one output port with its fan-out list.
type output interface {
	// write asks the client for the next sample. The caller holds the actor guard. The sample is held back until
	// flush. The boolean is false once the client signalled exhaustion.
	write() (bool, error)
	// flush fans the held sample out to every consumer, as a joined operation.
	flush(dn <-chan struct{}) error
	// halt closes every edge of the port.
	halt()
	// closed reports whether the port was exhausted or halted.
	closed() bool
	// edges returns the port topology.
	edges(producer *Meta) []EdgeInfo
}

// inPort is the typed receive side of an edge, bound to the consuming client by its read endpoint.
type inPort[C any, P any] struct {
	u    Uid[P]
	p    *pipe[P]
	a    *Actor[C]
	read func(*C, *Data[P]) error
}

func (i *inPort[C, P]) recv() error {
	d, err := i.p.recv()
	if err != nil {
		return err
	}
	i.a.mu.Lock()
	err = i.read(i.a.client, d)
	i.a.mu.Unlock()
	if err != nil {
		return fmt.Errorf("gaze: read %s: %w", i.u.Who(), err)
	}
	return nil
}

func (i *inPort[C, P]) drop() {
	i.p.drop()
}

func (i *inPort[C, P]) who() *Tag {
	return i.u.tag
}

// outEdge couples one pipe with the consumer it was wired to.
type outEdge[P any] struct {
	p        *pipe[P]
	consumer *Meta
}

// outPort is the typed send side of one output port. Fan-out shares the held *Data across all edges.
type outPort[C any, P any] struct {
	u      Uid[P]
	a      *Actor[C]
	write0 func(*C) (*Data[P], error)
	es     []outEdge[P]
	pend   *Data[P]
	shut   bool
}

func (o *outPort[C, P]) write() (bool, error) {
	if o.shut {
		return false, nil
	}
	d, err := o.write0(o.a.client)
	if err != nil {
		return false, fmt.Errorf("gaze: write %s: %w", o.u.Who(), err)
	}
	if d == nil {
		o.halt()
		return false, nil
	}
	o.pend = d
	return true, nil
}

func (o *outPort[C, P]) flush(dn <-chan struct{}) error {
	if o.shut || o.pend == nil {
		return nil
	}
	d := o.pend
	o.pend = nil
	if len(o.es) == 1 {
		return o.es[0].p.send(d, dn)
	}
	e := NewErr()
	wg := sync.WaitGroup{}
	for _, oe := range o.es {
		wg.Add(1)
		go func(p *pipe[P]) {
			defer wg.Done()
			if err := p.send(d, dn); err != nil {
				e.Put(err)
			}
		}(oe.p)
	}
	wg.Wait()
	return e.Get()
}

func (o *outPort[C, P]) halt() {
	o.shut = true
	for _, oe := range o.es {
		oe.p.halt()
	}
}

func (o *outPort[C, P]) closed() bool {
	return o.shut
}

func (o *outPort[C, P]) edges(producer *Meta) []EdgeInfo {
	r := []EdgeInfo{}
	for _, oe := range o.es {
		r = append(r, EdgeInfo{
			Producer:  producer,
			Consumer:  oe.consumer,
			Uid:       o.u.tag,
			Rate:      producer.NO,
			Bootstrap: oe.p.boot,
			Unbounded: oe.p.unbnd,
		})
	}
	return r
}

// Wire is an output opened by AddOutput, waiting to be connected with Into. Multiplex, Unbounded and Bootstrap
// configure the edges wired by subsequent Into calls.
type Wire[P any] struct {
	u      Uid[P]
	k      int
	n      int
	boot   bool
	unbnd  bool
	err    error
	sealed *bool
	attach func(p *pipe[P], consumer *Meta)
}

// Multiplex declares that the output fans out to k consumers. Wiring more than k inputs is a wiring error.
func (w *Wire[P]) Multiplex(k int) *Wire[P] {
	if w.err == nil && k < w.n {
		w.err = fmt.Errorf("%w: output %s already has %d consumers", ErrWiring, w.u.Who(), w.n)
	}
	w.k = k
	return w
}

// Unbounded replaces the default capacity 1 channel with an unbounded queue on the edges wired afterwards.
func (w *Wire[P]) Unbounded() *Wire[P] {
	w.unbnd = true
	return w
}

// Bootstrap prefills the edges wired afterwards with one zero value sample, breaking feedback loop startup.
func (w *Wire[P]) Bootstrap() *Wire[P] {
	w.boot = true
	return w
}

// AddOutput opens output u on actor a. The client produces samples through write; a nil sample signals exhaustion
// and closes the port. Call Into to connect the returned wire.
func AddOutput[C any, P any](a *Actor[C], u Uid[P], write func(*C) (*Data[P], error)) *Wire[P] {
	w := &Wire[P]{u: u, k: 1, sealed: &a.sealed}
	if a.m.NO == 0 {
		w.err = fmt.Errorf("%w: terminator %s may not have outputs", ErrWiring, a.m.Name)
		return w
	}
	o := &outPort[C, P]{u: u, a: a, write0: write}
	a.outs = append(a.outs, o)
	w.attach = func(p *pipe[P], consumer *Meta) {
		o.es = append(o.es, outEdge[P]{p: p, consumer: consumer})
	}
	return w
}

// Into connects a wired output to an input of actor b, whose client consumes the samples through read. One pipe is
// created per call; all consumers of the same wire share every sample by reference.
func Into[P any, C any](w *Wire[P], b *Actor[C], read func(*C, *Data[P]) error) error {
	if w.err != nil {
		return w.err
	}
	if *w.sealed || b.sealed {
		w.err = fmt.Errorf("%w: model is sealed, output %s cannot be wired", ErrWiring, w.u.Who())
		return w.err
	}
	if b.m.NI == 0 {
		w.err = fmt.Errorf("%w: initiator %s may not have inputs", ErrWiring, b.m.Name)
		return w.err
	}
	if w.n == w.k {
		w.err = fmt.Errorf("%w: output %s is multiplexed %d times", ErrWiring, w.u.Who(), w.k)
		return w.err
	}
	w.n++
	p := newPipe[P](w.u.tag, w.unbnd, w.boot)
	w.attach(p, &b.m)
	b.ins = append(b.ins, &inPort[C, P]{u: w.u, p: p, a: b, read: read})
	return nil
}

// Check interface implementation.
var (
	_ input  = (*inPort[struct{}, int])(nil)
	_ output = (*outPort[struct{}, int])(nil)
)
