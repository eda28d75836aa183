package datasets

import (
	"fmt"
	"math"
	"os"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/core/tensors/numpy"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Sequences is a precomputed buffer of Count sequences of Length square
// frames of Size pixels, stored as [0,255] intensities in (N, T, H, W) order.
type Sequences struct {
	Count  int
	Length int
	Size   int
	Data   []uint8
}

// NewSequences allocates a zeroed buffer.
func NewSequences(count, length, size int) *Sequences {
	return &Sequences{
		Count:  count,
		Length: length,
		Size:   size,
		Data:   make([]uint8, count*length*size*size),
	}
}

func (s *Sequences) sequenceLen() int {
	return s.Length * s.Size * s.Size
}

// SetFrames stores frames as sequence i, rounding to the nearest intensity.
func (s *Sequences) SetFrames(i int, frames []synth.Frame) {
	dst := s.Data[i*s.sequenceLen() : (i+1)*s.sequenceLen()]
	frameLen := s.Size * s.Size
	for f, frame := range frames {
		for j, v := range frame.Pix {
			dst[f*frameLen+j] = clampUint8(float64(v))
		}
	}
}

// Frames returns sequence i as frames.
func (s *Sequences) Frames(i int) []synth.Frame {
	src := s.Data[i*s.sequenceLen() : (i+1)*s.sequenceLen()]
	frameLen := s.Size * s.Size
	frames := make([]synth.Frame, s.Length)
	for f := range frames {
		frames[f] = synth.NewFrame(s.Size)
		for j, v := range src[f*frameLen : (f+1)*frameLen] {
			frames[f].Pix[j] = float32(v)
		}
	}
	return frames
}

// ToGomlxTensor returns the buffer as a uint8 tensor shaped (N, T, H, W).
func (s *Sequences) ToGomlxTensor() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(s.Data, s.Count, s.Length, s.Size, s.Size)
}

// WriteNpy saves the buffer to path in NumPy's .npy format.
func (s *Sequences) WriteNpy(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	if err := numpy.ToNpyWriter(s.ToGomlxTensor(), f); err != nil {
		_ = f.Close()
		return errors.WithMessagef(err, "failed to write %q", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %q", path)
}

// LoadSequences reads a .npy array shaped (N, T, H, W) or (N, T, H, W, 1)
// holding [0,255] intensities. uint8, float32 and float64 arrays are
// accepted; floats are rounded and clamped.
func LoadSequences(path string) (*Sequences, error) {
	t, err := numpy.FromNpyFile(path)
	if err != nil {
		return nil, err
	}
	dims := t.Shape().Dimensions
	if len(dims) == 5 && dims[4] == 1 {
		dims = dims[:4]
	}
	if len(dims) != 4 || dims[2] != dims[3] {
		return nil, errors.Errorf("%q: expected (N, T, H, W) array with H == W, got shape %v", path, t.Shape().Dimensions)
	}
	seqs := &Sequences{Count: dims[0], Length: dims[1], Size: dims[2]}

	switch t.DType() {
	case dtypes.Uint8:
		seqs.Data = tensors.MustCopyFlatData[uint8](t)
	case dtypes.Float32:
		flat := tensors.MustCopyFlatData[float32](t)
		seqs.Data = make([]uint8, len(flat))
		for i, v := range flat {
			seqs.Data[i] = clampUint8(float64(v))
		}
	case dtypes.Float64:
		flat := tensors.MustCopyFlatData[float64](t)
		seqs.Data = make([]uint8, len(flat))
		for i, v := range flat {
			seqs.Data[i] = clampUint8(v)
		}
	default:
		return nil, errors.Errorf("%q: unsupported dtype %s", path, t.DType())
	}
	klog.V(1).Infof("loaded %d sequences of %d frames (%dx%d) from %s", seqs.Count, seqs.Length, seqs.Size, seqs.Size, path)
	return seqs, nil
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// SequenceConfig holds the parameters of a SequenceDataset.
type SequenceConfig struct {
	Name        string
	NumInput    int
	NumOutput   int
	BlockFactor int
	Threshold   *float32
	BatchSize   int
}

// SequenceDataset serves samples sliced from a precomputed Sequences buffer.
// Unlike MovingDigits, the same index always returns the same sample.
type SequenceDataset struct {
	Config SequenceConfig
	seqs   *Sequences
	epoch  *epoch
}

// NewSequenceDataset validates cfg against seqs and creates the dataset.
func NewSequenceDataset(seqs *Sequences, cfg SequenceConfig) (*SequenceDataset, error) {
	if seqs == nil || seqs.Count == 0 {
		return nil, errors.Wrap(synth.ErrInvalidConfig, "no sequences given")
	}
	if len(seqs.Data) != seqs.Count*seqs.sequenceLen() {
		return nil, errors.Errorf("sequence buffer has %d values, expected %d", len(seqs.Data), seqs.Count*seqs.sequenceLen())
	}
	if cfg.BlockFactor == 0 {
		cfg.BlockFactor = 1
	}
	opts := SplitOptions{NumInput: cfg.NumInput, NumOutput: cfg.NumOutput, BlockFactor: cfg.BlockFactor, Threshold: cfg.Threshold}
	if err := opts.validate(seqs.Length, seqs.Size); err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Name == "" {
		cfg.Name = "Sequences"
	}
	return &SequenceDataset{
		Config: cfg,
		seqs:   seqs,
		epoch:  newEpoch(seqs.Count, cfg.BatchSize),
	}, nil
}

// NewHeat loads a heat diffusion simulation stored as .npy. Without explicit
// frame counts it uses 5 input and 5 output frames.
func NewHeat(path string, cfg SequenceConfig) (*SequenceDataset, error) {
	seqs, err := LoadSequences(path)
	if err != nil {
		return nil, err
	}
	if cfg.NumInput == 0 && cfg.NumOutput == 0 {
		cfg.NumInput, cfg.NumOutput = 5, 5
	}
	if cfg.Name == "" {
		cfg.Name = "Heat"
	}
	return NewSequenceDataset(seqs, cfg)
}

// Sequences returns the underlying buffer.
func (d *SequenceDataset) Sequences() *Sequences { return d.seqs }

// Len returns the number of sequences.
func (d *SequenceDataset) Len() int { return d.seqs.Count }

// Name returns the name of the dataset
func (d *SequenceDataset) Name() string { return d.Config.Name }

// Example slices sample idx from the buffer.
func (d *SequenceDataset) Example(idx int) (*Sample, error) {
	if idx < 0 || idx >= d.seqs.Count {
		return nil, fmt.Errorf("index %d out of range [0, %d)", idx, d.seqs.Count)
	}
	return SplitAndNormalize(d.seqs.Frames(idx), SplitOptions{
		NumInput:    d.Config.NumInput,
		NumOutput:   d.Config.NumOutput,
		BlockFactor: d.Config.BlockFactor,
		Threshold:   d.Config.Threshold,
	})
}

// Batch reads multiple examples by their indices
func (d *SequenceDataset) Batch(indices []int) ([]*Sample, error) {
	samples := make([]*Sample, len(indices))
	for i, idx := range indices {
		s, err := d.Example(idx)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return samples, nil
}

// Shuffle shuffles the order of examples
func (d *SequenceDataset) Shuffle(seed int64) { d.epoch.shuffle(seed) }

// Reset restarts Yield from the first sample.
func (d *SequenceDataset) Reset() { d.epoch.reset() }

// Yield returns the next batch of data for the gomlx Dataset interface.
func (d *SequenceDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	return yieldBatch(d, d.epoch)
}
