// Package baseline implements trivial forecasters for frame sequences and
// evaluates them against a dataset. They give the reference error any trained
// model must beat.
package baseline

import (
	"fmt"
	"strings"

	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

// Predictor forecasts numOutput frames from the input frames of a sample.
// The returned clip has the same channel and spatial dimensions as input.
type Predictor interface {
	Name() string
	Predict(input datasets.Clip, numOutput int) datasets.Clip
}

// Persistence repeats the last input frame, i.e. it predicts that nothing
// moves.
type Persistence struct{}

// Name implements Predictor.
func (Persistence) Name() string { return "persistence" }

// Predict implements Predictor. An input with no frames predicts zeros.
func (Persistence) Predict(input datasets.Clip, numOutput int) datasets.Clip {
	out := datasets.NewClip(numOutput, input.Channels, input.Height, input.Width)
	if input.Frames == 0 {
		return out
	}
	last := input.Frame(input.Frames - 1)
	for f := range numOutput {
		copy(out.Frame(f), last)
	}
	return out
}

// Linear extrapolates every pixel along the line through its values in the
// last two input frames. Predictions are clamped to [0, 1]. With a single
// input frame it behaves like Persistence.
type Linear struct{}

// Name implements Predictor.
func (Linear) Name() string { return "linear" }

// Predict implements Predictor.
func (Linear) Predict(input datasets.Clip, numOutput int) datasets.Clip {
	if input.Frames < 2 {
		return Persistence{}.Predict(input, numOutput)
	}
	out := datasets.NewClip(numOutput, input.Channels, input.Height, input.Width)
	prev, last := input.Frame(input.Frames-2), input.Frame(input.Frames-1)
	for f := range numOutput {
		dst := out.Frame(f)
		steps := float32(f + 1)
		for j := range dst {
			dst[j] = clamp01(last[j] + steps*(last[j]-prev[j]))
		}
	}
	return out
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Report holds the mean squared error of a predictor over a set of samples.
type Report struct {
	Predictor string
	Samples   int

	// FrameMSE[k] is the error of the k-th predicted frame.
	FrameMSE []float64
	MSE      float64
}

// String formats the report on one line.
func (r *Report) String() string {
	parts := make([]string, len(r.FrameMSE))
	for i, v := range r.FrameMSE {
		parts[i] = fmt.Sprintf("%.5f", v)
	}
	return fmt.Sprintf("%s: MSE=%.5f over %d samples, per frame [%s]", r.Predictor, r.MSE, r.Samples, strings.Join(parts, " "))
}

// Evaluate runs p over the given samples of ds and compares its predictions
// with the target frames. With no indices the first min(Len, 256) samples
// are used.
func Evaluate(ds datasets.Dataset, p Predictor, indices []int) (*Report, error) {
	if len(indices) == 0 {
		n := min(ds.Len(), 256)
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices) == 0 {
		return nil, errors.Wrap(synth.ErrInvalidConfig, "dataset is empty")
	}
	samples, err := ds.Batch(indices)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: failed to read samples", ds.Name())
	}

	numOutput := samples[0].Output.Frames
	if numOutput == 0 {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "%s has no output frames to evaluate", ds.Name())
	}
	perFrame := make([][]float64, numOutput)
	var all []float64
	for i, s := range samples {
		pred := p.Predict(s.Input, s.Output.Frames)
		if len(pred.Data) != len(s.Output.Data) || s.Output.Frames != numOutput {
			return nil, errors.Errorf("%s: prediction for sample %d has shape %v, expected %v",
				p.Name(), indices[i], pred.Dims(), s.Output.Dims())
		}
		for f := range numOutput {
			want, got := s.Output.Frame(f), pred.Frame(f)
			for j := range want {
				d := float64(got[j] - want[j])
				perFrame[f] = append(perFrame[f], d*d)
			}
		}
	}

	r := &Report{Predictor: p.Name(), Samples: len(samples), FrameMSE: make([]float64, numOutput)}
	for f, sq := range perFrame {
		r.FrameMSE[f] = stat.Mean(sq, nil)
		all = append(all, sq...)
	}
	r.MSE = stat.Mean(all, nil)
	klog.V(1).Infof("%s on %s: %s", p.Name(), ds.Name(), r)
	return r, nil
}

// EvaluateAll evaluates every predictor on the same samples.
func EvaluateAll(ds datasets.Dataset, predictors []Predictor, indices []int) ([]*Report, error) {
	reports := make([]*Report, 0, len(predictors))
	for _, p := range predictors {
		r, err := Evaluate(ds, p, indices)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
