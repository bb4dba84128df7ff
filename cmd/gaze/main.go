package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/godump/doa"
	"github.com/mohanson/ddir"
	"github.com/mohanson/gaze"
	"github.com/mohanson/gaze/client/feedback"
	"github.com/mohanson/gaze/client/logging"
	"github.com/mohanson/gaze/client/sampler"
	"github.com/mohanson/gaze/client/signal"
	"github.com/mohanson/gaze/client/spectrum"
	"github.com/mohanson/gaze/lib/gracefulexit"
	"github.com/mohanson/gaze/lib/pretty"
)

// Conf is acting as package level configuration.
var Conf = struct {
	Version string
}{
	Version: "v0.1.0",
}

const helpMsg = `Usage: gaze <command> [<args>]

The most commonly used gaze commands are:
  decimate   Run the 1:10 decimation demo model
  feedback   Run the closed loop integrator demo model
  spectrum   Run the sliding window spectrum demo model
  ver        Print the gaze version number and exit

Run 'gaze <command> -h' for more information on a command.`

// drive checks and runs the model to exhaustion, optionally printing and saving the flowchart first. SIGINT stops
// the model cooperatively.
func drive(m *gaze.Model, flow bool, save bool) {
	doa.Nil(m.Check())
	if flow {
		fmt.Print(m.Flowchart())
	}
	if save {
		ddir.Make()
		name := ddir.Join("flowchart.txt")
		doa.Nil(os.WriteFile(name, []byte(m.Flowchart()), 0644))
		log.Println("main: flowchart saved in", name)
	}
	doa.Nil(m.Run())
	done := make(chan struct{})
	go func() {
		m.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-gracefulexit.Context().Done():
		log.Println("main: interrupted")
		m.Stop()
		<-done
	}
	doa.Nil(m.Wait())
}

func main() {
	if len(os.Args) <= 1 {
		fmt.Println(helpMsg)
		return
	}
	ddir.Auto("gaze")
	subCommand := os.Args[1]
	os.Args = os.Args[1:]
	switch subCommand {
	case "decimate":
		var (
			flFlow = flag.Bool("flow", false, "print the model flowchart")
			flSave = flag.Bool("save", false, "save the model flowchart")
			flStep = flag.Int("n", 100, "number of base ticks")
		)
		flag.Parse()
		var (
			uidFast = gaze.NewUid[[]float64]("demo.decimate.fast")
			uidSlow = gaze.NewUid[[]float64]("demo.decimate.slow")
		)
		src := gaze.NewInitiator(signal.New(1, *flStep).Signals(signal.Ramp{A: 1}).Progress(), 1, "source")
		dec := gaze.NewActor(sampler.New([]float64{0}), 1, 10, "decimator")
		rec := gaze.NewTerminator(logging.New(), 10, "recorder")
		doa.Nil(gaze.Into(gaze.AddOutput(src, uidFast, (*signal.Engine).Write), dec, (*sampler.Engine[[]float64]).Read))
		doa.Nil(logging.Logn(gaze.AddOutput(dec, uidSlow, (*sampler.Engine[[]float64]).Write), rec, 1))
		drive(gaze.NewModel(src, dec, rec), *flFlow, *flSave)
		rec.Sync(func(e *logging.Engine) {
			data := [][]string{{"record", "value"}}
			for i := 0; i < e.Len(); i++ {
				data = append(data, []string{fmt.Sprint(i), fmt.Sprint(e.Record(i)[0])})
			}
			pretty.PrintTable(data)
		})
	case "feedback":
		var (
			flFlow = flag.Bool("flow", false, "print the model flowchart")
			flGain = flag.Float64("g", 0.5, "integrator gain")
			flSave = flag.Bool("save", false, "save the model flowchart")
			flStep = flag.Int("n", 100, "number of base ticks")
		)
		flag.Parse()
		var (
			uidSetPoint = gaze.NewUid[float64]("demo.feedback.setpoint")
			uidResidual = gaze.NewUid[float64]("demo.feedback.residual")
			uidState    = gaze.NewUid[float64]("demo.feedback.state")
			uidTrace    = gaze.NewUid[float64]("demo.feedback.trace")
		)
		src := gaze.NewInitiator(signal.New(1, *flStep).Signals(signal.Constant(1)), 1, "set point")
		dif := gaze.NewActor(feedback.NewDifferentiator(), 1, 1, "differentiator")
		itg := gaze.NewActor(feedback.NewIntegrator(*flGain, 1), 1, 1, "integrator")
		rec := gaze.NewTerminator(logging.New(), 1, "recorder")
		doa.Nil(gaze.Into(gaze.AddOutput(src, uidSetPoint, (*signal.Engine).WriteOne), dif, (*feedback.Differentiator).ReadSetPoint))
		doa.Nil(gaze.Into(gaze.AddOutput(dif, uidResidual, (*feedback.Differentiator).Write), itg, (*feedback.Integrator).Read))
		doa.Nil(gaze.Into(gaze.AddOutput(itg, uidState, (*feedback.Integrator).Write).Bootstrap(), dif, (*feedback.Differentiator).ReadFeedback))
		doa.Nil(gaze.Into(gaze.AddOutput(itg, uidTrace, (*feedback.Integrator).Write), rec, (*logging.Engine).ReadOne))
		drive(gaze.NewModel(src, dif, itg, rec), *flFlow, *flSave)
		itg.Sync(func(e *feedback.Integrator) {
			log.Println("main: integrator state", e.Last())
		})
	case "spectrum":
		var (
			flFlow = flag.Bool("flow", false, "print the model flowchart")
			flSave = flag.Bool("save", false, "save the model flowchart")
			flSize = flag.Int("w", 64, "window size, a power of two")
			flStep = flag.Int("n", 256, "number of base ticks")
		)
		flag.Parse()
		var (
			uidTone = gaze.NewUid[float64]("demo.spectrum.tone")
			uidBins = gaze.NewUid[[]float64]("demo.spectrum.bins")
		)
		src := gaze.NewInitiator(signal.New(1, *flStep).Signals(signal.Sinusoid{
			Amplitude:           1,
			SamplingFrequencyHz: float64(*flSize),
			FrequencyHz:         8,
		}), 1, "tone")
		ana := gaze.NewActor(spectrum.New(*flSize), 1, 1, "analyzer")
		rec := gaze.NewTerminator(logging.NewTail(1), 1, "recorder")
		doa.Nil(gaze.Into(gaze.AddOutput(src, uidTone, (*signal.Engine).WriteOne), ana, (*spectrum.Engine).Read))
		doa.Nil(gaze.Into(gaze.AddOutput(ana, uidBins, (*spectrum.Engine).Write), rec, (*logging.Engine).Read))
		drive(gaze.NewModel(src, ana, rec), *flFlow, *flSave)
		rec.Sync(func(e *logging.Engine) {
			bins := e.Record(e.Len() - 1)
			peak := 0
			for i, v := range bins {
				if v > bins[peak] {
					peak = i
				}
			}
			log.Println("main: spectrum peak at bin", peak)
		})
	case "ver":
		fmt.Println("gaze", Conf.Version)
	default:
		fmt.Println(helpMsg)
	}
}
