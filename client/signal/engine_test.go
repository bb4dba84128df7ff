package signal

import (
	"math"
	"testing"

	"github.com/godump/doa"
)

func TestSignalKinds(t *testing.T) {
	doa.Doa(Constant(4).Get(0) == 4)
	doa.Doa(Constant(4).Get(9) == 4)
	doa.Doa(Ramp{A: 2, B: 1}.Get(3) == 7)
	s := Sinusoid{Amplitude: 2, SamplingFrequencyHz: 8, FrequencyHz: 2}
	doa.Doa(math.Abs(s.Get(0)) < 1e-12)
	doa.Doa(math.Abs(s.Get(1)-2) < 1e-12)
	doa.Doa(math.Abs(s.Get(2)) < 1e-12)
	g := Sigmoid{Amplitude: 1, SamplingFrequencyHz: 1}
	doa.Doa(g.Get(0) > 0 && g.Get(0) < 1)
	doa.Doa(g.Get(16) > 0.99)
	doa.Doa(Composite{Constant(1), Ramp{A: 1}}.Get(2) == 3)
}

func TestSignalNoise(t *testing.T) {
	s := Noise{Mean: 4, StdDev: 0}
	doa.Doa(s.Get(0) == 4)
}

func TestEngineWrite(t *testing.T) {
	e := New(2, 3).OutputSignal(1, Ramp{A: 1})
	for i := 0; i < 3; i++ {
		d, err := e.Write()
		doa.Nil(err)
		doa.Doa(d.Value()[0] == 0)
		doa.Doa(d.Value()[1] == float64(i))
	}
	d, err := e.Write()
	doa.Nil(err)
	doa.Doa(d == nil)
}

func TestEngineWriteOne(t *testing.T) {
	e := FromData([]float64{7}, 2)
	for i := 0; i < 2; i++ {
		d, err := e.WriteOne()
		doa.Nil(err)
		doa.Doa(d.Value() == 7)
	}
	d, err := e.WriteOne()
	doa.Nil(err)
	doa.Doa(d == nil)
}
