package gaze

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/godump/doa"
)

// feed emits the given values in order, then exhausts.
type feed struct {
	vals []float64
	i    int
}

func (c *feed) Write() (*Data[float64], error) {
	if c.i >= len(c.vals) {
		return nil, nil
	}
	v := c.vals[c.i]
	c.i++
	return NewData(v), nil
}

// keep appends every received sample and its identity.
type keep struct {
	vals []float64
	refs []*Data[float64]
}

func (c *keep) Read(d *Data[float64]) error {
	c.vals = append(c.vals, d.Value())
	c.refs = append(c.refs, d)
	return nil
}

// echo holds the last sample and re-emits it.
type echo struct {
	last *Data[float64]
}

func (c *echo) Read(d *Data[float64]) error {
	c.last = d
	return nil
}

func (c *echo) Write() (*Data[float64], error) {
	return c.last, nil
}

// boom fails its read once the fuse is burnt.
type boom struct {
	fuse int
}

var errBoom = errors.New("boom")

func (c *boom) Read(d *Data[float64]) error {
	c.fuse--
	if c.fuse <= 0 {
		return errBoom
	}
	return nil
}

func TestActorPassThrough(t *testing.T) {
	u := NewUid[float64]("t/actor/passthrough")
	src := NewInitiator(&feed{vals: []float64{0, 1, 2}}, 1, "src")
	snk := NewTerminator(&keep{}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u, (*feed).Write), snk, (*keep).Read))
	m := NewModel(src, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	doa.Nil(m.Wait())
	snk.Sync(func(c *keep) {
		doa.Doa(len(c.vals) == 3)
		doa.Doa(c.vals[0] == 0 && c.vals[1] == 1 && c.vals[2] == 2)
	})
}

func TestActorFifo(t *testing.T) {
	u0 := NewUid[float64]("t/actor/fifo/0")
	u1 := NewUid[float64]("t/actor/fifo/1")
	vals := make([]float64, 256+rand.IntN(256))
	for i := range vals {
		vals[i] = rand.Float64()
	}
	src := NewInitiator(&feed{vals: vals}, 1, "src")
	mid := NewActor(&echo{}, 1, 1, "mid")
	snk := NewTerminator(&keep{}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u0, (*feed).Write), mid, (*echo).Read))
	doa.Nil(Into(AddOutput(mid, u1, (*echo).Write), snk, (*keep).Read))
	m := NewModel(src, mid, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	doa.Nil(m.Wait())
	snk.Sync(func(c *keep) {
		doa.Doa(len(c.vals) == len(vals))
		for i := range vals {
			doa.Doa(c.vals[i] == vals[i])
		}
	})
}

func TestActorHold(t *testing.T) {
	u0 := NewUid[float64]("t/actor/hold/0")
	u1 := NewUid[float64]("t/actor/hold/1")
	src := NewInitiator(&feed{vals: []float64{0, 1, 2}}, 10, "src")
	mid := NewActor(&echo{}, 10, 1, "mid")
	snk := NewTerminator(&keep{}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u0, (*feed).Write), mid, (*echo).Read))
	doa.Nil(Into(AddOutput(mid, u1, (*echo).Write), snk, (*keep).Read))
	m := NewModel(src, mid, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	doa.Nil(m.Wait())
	snk.Sync(func(c *keep) {
		doa.Doa(len(c.vals) == 30)
		for i, v := range c.vals {
			doa.Doa(v == float64(i/10))
		}
	})
}

func TestActorFanOut(t *testing.T) {
	u := NewUid[float64]("t/actor/fanout")
	vals := make([]float64, 128)
	for i := range vals {
		vals[i] = rand.Float64()
	}
	src := NewInitiator(&feed{vals: vals}, 1, "src")
	sk0 := NewTerminator(&keep{}, 1, "sk0")
	sk1 := NewTerminator(&keep{}, 1, "sk1")
	sk2 := NewTerminator(&keep{}, 1, "sk2")
	w := AddOutput(src, u, (*feed).Write).Multiplex(3)
	doa.Nil(Into(w, sk0, (*keep).Read))
	doa.Nil(Into(w, sk1, (*keep).Read))
	doa.Nil(Into(w, sk2, (*keep).Read))
	m := NewModel(src, sk0, sk1, sk2)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	doa.Nil(m.Wait())
	c0 := sk0.client
	c1 := sk1.client
	c2 := sk2.client
	doa.Doa(len(c0.vals) == len(vals) && len(c1.vals) == len(vals) && len(c2.vals) == len(vals))
	for i := range vals {
		doa.Doa(c0.vals[i] == vals[i] && c1.vals[i] == vals[i] && c2.vals[i] == vals[i])
		// One payload object, shared by reference across all consumers.
		doa.Doa(c0.refs[i] == c1.refs[i] && c1.refs[i] == c2.refs[i])
	}
}

func TestActorUnbounded(t *testing.T) {
	u := NewUid[float64]("t/actor/unbounded")
	vals := make([]float64, 128)
	for i := range vals {
		vals[i] = float64(i)
	}
	src := NewInitiator(&feed{vals: vals}, 1, "src")
	snk := NewTerminator(&keep{}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u, (*feed).Write).Unbounded(), snk, (*keep).Read))
	m := NewModel(src, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	doa.Nil(m.Wait())
	snk.Sync(func(c *keep) {
		doa.Doa(len(c.vals) == len(vals))
		for i := range vals {
			doa.Doa(c.vals[i] == vals[i])
		}
	})
}

func TestActorStop(t *testing.T) {
	u := NewUid[float64]("t/actor/stop")
	src := NewInitiator(&blip{}, 1, "src")
	snk := NewTerminator(&bin{}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u, (*blip).Write), snk, (*bin).Read))
	m := NewModel(src, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	m.Stop()
	doa.Nil(m.Wait())
}

func TestActorClientError(t *testing.T) {
	u := NewUid[float64]("t/actor/clienterror")
	src := NewInitiator(&blip{}, 1, "src")
	snk := NewTerminator(&boom{fuse: 5}, 1, "snk")
	doa.Nil(Into(AddOutput(src, u, (*blip).Write), snk, (*boom).Read))
	m := NewModel(src, snk)
	doa.Nil(m.Check())
	doa.Nil(m.Run())
	err := m.Wait()
	doa.Doa(errors.Is(err, errBoom))
	doa.Doa(strings.Contains(err.Error(), "snk"))
}
