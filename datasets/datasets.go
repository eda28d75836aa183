package datasets

import "github.com/gomlx/gomlx/pkg/core/tensors"

// This package provides the video forecasting datasets and the helpers that
// turn their samples into model-ready buffers.
//
// MovingDigits
//   - Generates bouncing-sprite sequences on demand from a sprite pool (see
//     package synth), one fresh sequence per Example call.
//   - Input: the first NumInput frames, Output: the next NumOutput frames,
//     both shaped (frames, channels, height, width) and scaled to [0,1].
//
// SequenceDataset
//   - Slices samples from a precomputed (N, T, H, W) buffer of intensities,
//     e.g. a heat diffusion simulation stored as .npy (see NewHeat) or a
//     frozen MovingDigits run (see MovingDigits.Precompute).
//
// Notes on gomlx tensors:
//   - Samples are plain float32 buffers plus shape metadata. BatchFlat packs
//     several of them contiguously and ToGomlxTensors converts the batch into
//     gomlx tensors shaped [batch, frames, channels, height, width].
//
// The datasets implement this interface in order to interact with GoMLX
// training loops and batching utilities.
type Dataset interface {
	Len() int
	Example(i int) (*Sample, error)
	Batch(indices []int) ([]*Sample, error)
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	Name() string
	Reset()
	Yield() (any, []*tensors.Tensor, []*tensors.Tensor, error)
}
