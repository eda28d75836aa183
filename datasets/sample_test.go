package datasets

import (
	"testing"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampFrames returns n frames whose pixels encode (frame, position).
func rampFrames(n, size int) []synth.Frame {
	frames := make([]synth.Frame, n)
	for f := range frames {
		frames[f] = synth.NewFrame(size)
		for j := range frames[f].Pix {
			frames[f].Pix[j] = float32((f*7 + j) % 256)
		}
	}
	return frames
}

func TestBlockReshape(t *testing.T) {
	const size, factor = 8, 2
	frame := make([]float32, size*size)
	for i := range frame {
		frame[i] = float32(i)
	}
	blocks, err := BlockReshape(frame, size, factor)
	require.NoError(t, err)

	w := size / factor
	for a := range factor {
		for b := range factor {
			for i := range w {
				for j := range w {
					assert.Equal(t, frame[(i*factor+a)*size+j*factor+b], blocks[(a*factor+b)*w*w+i*w+j])
				}
			}
		}
	}

	back, err := BlockUnreshape(blocks, size, factor)
	require.NoError(t, err)
	assert.Equal(t, frame, back)

	same, err := BlockReshape(frame, size, 1)
	require.NoError(t, err)
	assert.Equal(t, frame, same)

	_, err = BlockReshape(frame, size, 3)
	assert.True(t, errors.Is(err, synth.ErrInvalidConfig))
	_, err = BlockReshape(frame, size, 0)
	assert.True(t, errors.Is(err, synth.ErrInvalidConfig))
	_, err = BlockReshape(frame[:10], size, 2)
	assert.Error(t, err)
}

func TestSplitAndNormalizeExact(t *testing.T) {
	frames := rampFrames(10, 6)
	s, err := SplitAndNormalize(frames, SplitOptions{NumInput: 6, NumOutput: 4})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 1, 6, 6}, s.Input.Dims())
	assert.Equal(t, []int{4, 1, 6, 6}, s.Output.Dims())
	assert.False(t, s.Binarized)

	// input followed by output reconstructs the original frames.
	var rebuilt []float32
	for _, v := range append(append([]float32{}, s.Input.Data...), s.Output.Data...) {
		assert.True(t, v >= 0 && v <= 1)
		rebuilt = append(rebuilt, float32(Denormalize(v)))
	}
	var original []float32
	for _, f := range frames {
		original = append(original, f.Pix...)
	}
	assert.Equal(t, original, rebuilt)
}

func TestSplitAndNormalizeShorterWindow(t *testing.T) {
	frames := rampFrames(10, 4)
	s, err := SplitAndNormalize(frames, SplitOptions{NumInput: 3, NumOutput: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Input.Frames)
	assert.Equal(t, 2, s.Output.Frames)
	assert.Equal(t, Normalize(frames[3].Pix[0]), s.Output.At(0, 0, 0, 0))

	s, err = SplitAndNormalize(frames, SplitOptions{NumInput: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Output.Frames)
	assert.Empty(t, s.Output.Data)
}

func TestSplitAndNormalizeErrors(t *testing.T) {
	frames := rampFrames(10, 4)
	_, err := SplitAndNormalize(frames, SplitOptions{NumInput: 6, NumOutput: 5})
	assert.True(t, errors.Is(err, synth.ErrInvalidConfig))

	_, err = SplitAndNormalize(frames, SplitOptions{NumInput: -1, NumOutput: 5})
	assert.True(t, errors.Is(err, synth.ErrInvalidConfig))

	_, err = SplitAndNormalize(frames, SplitOptions{NumInput: 5, NumOutput: 5, BlockFactor: 3})
	assert.True(t, errors.Is(err, synth.ErrInvalidConfig))
}

func TestSplitAndNormalizeBlocks(t *testing.T) {
	frames := rampFrames(4, 8)
	s, err := SplitAndNormalize(frames, SplitOptions{NumInput: 2, NumOutput: 2, BlockFactor: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 4, 4}, s.Input.Dims())

	// channel (a=1, b=0) holds rows 1,3,5,7 and columns 0,2,4,6.
	assert.Equal(t, Normalize(frames[1].At(3, 4)), s.Input.At(1, 2, 1, 2))

	back, err := BlockUnreshape(s.Output.Frame(1), 8, 2)
	require.NoError(t, err)
	for j, v := range back {
		assert.Equal(t, frames[3].Pix[j], float32(Denormalize(v)))
	}
}

func TestSplitAndNormalizeThreshold(t *testing.T) {
	frames := []synth.Frame{synth.NewFrame(2), synth.NewFrame(2)}
	copy(frames[0].Pix, []float32{0, 100, 200, 255})
	copy(frames[1].Pix, []float32{255, 200, 100, 0})

	s, err := SplitAndNormalize(frames, SplitOptions{NumInput: 1, NumOutput: 1, Threshold: Threshold(0.5)})
	require.NoError(t, err)
	assert.True(t, s.Binarized)
	assert.Equal(t, []float32{0, 0, 1, 1}, s.Input.Data)
	assert.Equal(t, []int64{1, 1, 0, 0}, s.OutputClasses())
}

func TestNormalizeRoundTrip(t *testing.T) {
	for v := range 256 {
		n := Normalize(float32(v))
		assert.True(t, n >= 0 && n <= 1)
		assert.Equal(t, uint8(v), Denormalize(n))
	}
	assert.Equal(t, uint8(0), Denormalize(-0.3))
	assert.Equal(t, uint8(255), Denormalize(1.7))
}
