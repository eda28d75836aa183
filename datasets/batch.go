package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// BatchFlat stores a batch of samples in flat contiguous buffers, laid out
// as [batch, frames, channels, height, width].
type BatchFlat struct {
	Inputs    []float32
	Labels    []float32
	BatchSize int

	InputDims []int // (frames, channels, height, width) of one input
	LabelDims []int // (frames, channels, height, width) of one label

	// Binarized labels are converted to int64 classes by ToGomlxTensors.
	Binarized bool
}

// MakeBatchFlat flattens samples into contiguous buffers. All samples must
// share the same shapes.
func MakeBatchFlat(samples []*Sample) (*BatchFlat, error) {
	if len(samples) == 0 {
		return &BatchFlat{BatchSize: 0}, nil
	}

	first := samples[0]
	b := &BatchFlat{
		BatchSize: len(samples),
		InputDims: first.Input.Dims(),
		LabelDims: first.Output.Dims(),
		Binarized: first.Binarized,
	}
	inputLen, labelLen := len(first.Input.Data), len(first.Output.Data)
	b.Inputs = make([]float32, b.BatchSize*inputLen)
	b.Labels = make([]float32, b.BatchSize*labelLen)

	for i, s := range samples {
		if s == nil {
			return nil, fmt.Errorf("sample %d is nil", i)
		}
		if !sameDims(s.Input.Dims(), b.InputDims) || !sameDims(s.Output.Dims(), b.LabelDims) {
			return nil, fmt.Errorf("inconsistent shapes at example %d: input %v label %v, expected input %v label %v",
				i, s.Input.Dims(), s.Output.Dims(), b.InputDims, b.LabelDims)
		}
		if s.Binarized != b.Binarized {
			return nil, fmt.Errorf("example %d binarized=%v, batch binarized=%v", i, s.Binarized, b.Binarized)
		}
		copy(b.Inputs[i*inputLen:], s.Input.Data)
		copy(b.Labels[i*labelLen:], s.Output.Data)
	}
	return b, nil
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ToGomlxTensors converts BatchFlat to gomlx tensors: float32 inputs and
// float32 labels, or int64 labels for binarized batches.
func (b *BatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 {
		return nil, nil, fmt.Errorf("empty batch")
	}
	inDims := append([]int{b.BatchSize}, b.InputDims...)
	labDims := append([]int{b.BatchSize}, b.LabelDims...)
	if size(inDims) == 0 || size(labDims) == 0 {
		// Samples with an empty output window are valid, but not as a batch.
		return nil, nil, fmt.Errorf("batch with zero-sized inputs %v or labels %v", inDims, labDims)
	}

	inT := tensors.FromFlatDataAndDimensions(b.Inputs, inDims...)
	if b.Binarized {
		classes := make([]int64, len(b.Labels))
		for i, v := range b.Labels {
			classes[i] = int64(v)
		}
		return inT, tensors.FromFlatDataAndDimensions(classes, labDims...), nil
	}
	return inT, tensors.FromFlatDataAndDimensions(b.Labels, labDims...), nil
}

func size(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
