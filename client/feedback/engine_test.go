package feedback

import (
	"math"
	"testing"

	"github.com/godump/doa"
	"github.com/mohanson/gaze"
)

func TestLoopFixedPoint(t *testing.T) {
	dif := NewDifferentiator()
	itg := NewIntegrator(0.5, 1)
	y := 0.0
	for i := 0; i < 30; i++ {
		doa.Nil(dif.ReadSetPoint(gaze.NewData(1.0)))
		doa.Nil(dif.ReadFeedback(gaze.NewData(y)))
		r, err := dif.Write()
		doa.Nil(err)
		doa.Nil(itg.Read(r))
		s, err := itg.Write()
		doa.Nil(err)
		y = s.Value()
	}
	doa.Doa(math.Abs(y-1) < 1e-6)
	doa.Doa(math.Abs(itg.Last()[0]-1) < 1e-6)
}

func TestDifferentiator(t *testing.T) {
	dif := NewDifferentiator()
	doa.Nil(dif.ReadSetPoint(gaze.NewData(3.0)))
	doa.Nil(dif.ReadFeedback(gaze.NewData(1.0)))
	r, err := dif.Write()
	doa.Nil(err)
	doa.Doa(r.Value() == 2)
}
