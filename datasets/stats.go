package datasets

import (
	"math"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the mean and standard deviation of the normalized input pixels
// of a dataset, used to standardize model inputs.
type Stats struct {
	Mean float64
	Std  float64

	// Count of pixels the statistics were computed over.
	Count int
}

// ComputeStats reads the given samples of ds and computes the statistics of
// their input pixels. With no indices the first min(Len, 256) samples are
// used.
func ComputeStats(ds Dataset, indices []int) (Stats, error) {
	if len(indices) == 0 {
		n := min(ds.Len(), 256)
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices) == 0 {
		return Stats{}, errors.Wrap(synth.ErrInvalidConfig, "dataset is empty")
	}
	samples, err := ds.Batch(indices)
	if err != nil {
		return Stats{}, err
	}

	var values []float64
	for _, s := range samples {
		for _, v := range s.Input.Data {
			values = append(values, float64(v))
		}
	}
	if len(values) == 0 {
		return Stats{}, errors.New("samples have no input pixels")
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Stats{Mean: mean, Std: std, Count: len(values)}, nil
}

// Standardize maps every value of clip to (v - Mean) / Std in place. A zero
// standard deviation only subtracts the mean.
func (s Stats) Standardize(clip Clip) {
	std := s.Std
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	for i, v := range clip.Data {
		clip.Data[i] = float32((float64(v) - s.Mean) / std)
	}
}
