package datasets

import (
	"math"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
)

// Clip is a contiguous (frames, channels, height, width) float32 buffer.
type Clip struct {
	Frames   int
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// NewClip allocates a zeroed clip.
func NewClip(frames, channels, height, width int) Clip {
	return Clip{
		Frames:   frames,
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, frames*channels*height*width),
	}
}

// FrameLen is the number of values in one frame (all channels).
func (c Clip) FrameLen() int {
	return c.Channels * c.Height * c.Width
}

// Frame returns the (channels, height, width) slice of frame f. It aliases
// the clip's data.
func (c Clip) Frame(f int) []float32 {
	n := c.FrameLen()
	return c.Data[f*n : (f+1)*n]
}

// At returns the value at frame f, channel ch, row y, column x.
func (c Clip) At(f, ch, y, x int) float32 {
	return c.Data[((f*c.Channels+ch)*c.Height+y)*c.Width+x]
}

// Dims returns the clip shape in (frames, channels, height, width) order.
func (c Clip) Dims() []int {
	return []int{c.Frames, c.Channels, c.Height, c.Width}
}

// Sample is one forecasting example: the first frames of a sequence as input
// and the following frames as the target.
type Sample struct {
	Input  Clip
	Output Clip

	// Binarized is set when both clips were thresholded to 0/1.
	Binarized bool
}

// OutputClasses returns the output as integer classes. Only meaningful for
// binarized samples, where every value is 0 or 1.
func (s *Sample) OutputClasses() []int64 {
	classes := make([]int64, len(s.Output.Data))
	for i, v := range s.Output.Data {
		classes[i] = int64(v)
	}
	return classes
}

// SplitOptions controls SplitAndNormalize.
type SplitOptions struct {
	// NumInput and NumOutput frames; their sum can't exceed the sequence length.
	NumInput  int
	NumOutput int

	// BlockFactor rearranges each frame into BlockFactor² sub-channels. Zero
	// is treated as 1 (no blocking).
	BlockFactor int

	// Threshold, if set, binarizes input and output to value > *Threshold.
	Threshold *float32
}

// Threshold is a small helper to fill SplitOptions.Threshold.
func Threshold(v float32) *float32 {
	return &v
}

func (o SplitOptions) blockFactor() int {
	if o.BlockFactor == 0 {
		return 1
	}
	return o.BlockFactor
}

func (o SplitOptions) validate(length, size int) error {
	if o.NumInput < 0 || o.NumOutput < 0 {
		return errors.Wrapf(synth.ErrInvalidConfig, "frame counts must be >= 0, got in=%d out=%d", o.NumInput, o.NumOutput)
	}
	if o.NumInput+o.NumOutput > length {
		return errors.Wrapf(synth.ErrInvalidConfig, "in (%d) + out (%d) frames exceed sequence length %d",
			o.NumInput, o.NumOutput, length)
	}
	r := o.blockFactor()
	if r < 0 || (size > 0 && size%r != 0) {
		return errors.Wrapf(synth.ErrInvalidConfig, "block factor %d does not divide frame size %d", r, size)
	}
	return nil
}

// SplitAndNormalize splits frames into the first NumInput frames and the
// following NumOutput frames, applies the block reshape, and scales values
// from [0,255] to [0,1]. With a Threshold both halves are binarized.
func SplitAndNormalize(frames []synth.Frame, opts SplitOptions) (*Sample, error) {
	size := 0
	if len(frames) > 0 {
		size = frames[0].Size
	}
	if err := opts.validate(len(frames), size); err != nil {
		return nil, err
	}
	r := opts.blockFactor()
	w := size / r

	sample := &Sample{
		Input:  NewClip(opts.NumInput, r*r, w, w),
		Output: NewClip(opts.NumOutput, r*r, w, w),
	}
	fill := func(dst Clip, src []synth.Frame) error {
		for i, f := range src {
			if f.Size != size {
				return errors.Errorf("frame %d has size %d, expected %d", i, f.Size, size)
			}
			blocks, err := BlockReshape(f.Pix, size, r)
			if err != nil {
				return err
			}
			out := dst.Frame(i)
			for j, v := range blocks {
				out[j] = Normalize(v)
			}
		}
		return nil
	}
	if err := fill(sample.Input, frames[:opts.NumInput]); err != nil {
		return nil, err
	}
	if err := fill(sample.Output, frames[opts.NumInput:opts.NumInput+opts.NumOutput]); err != nil {
		return nil, err
	}

	if opts.Threshold != nil {
		binarize(sample.Input.Data, *opts.Threshold)
		binarize(sample.Output.Data, *opts.Threshold)
		sample.Binarized = true
	}
	return sample, nil
}

// Normalize maps a [0,255] intensity to [0,1].
func Normalize(v float32) float32 {
	return float32(float64(v) / 255.0)
}

// Denormalize maps a [0,1] value back to the nearest [0,255] intensity.
func Denormalize(v float32) uint8 {
	x := math.Round(float64(v) * 255)
	switch {
	case x < 0:
		return 0
	case x > 255:
		return 255
	}
	return uint8(x)
}

func binarize(data []float32, th float32) {
	for i, v := range data {
		if v > th {
			data[i] = 1
		} else {
			data[i] = 0
		}
	}
}
