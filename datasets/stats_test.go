package datasets

import (
	"testing"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSequences(count, size int, value uint8) *Sequences {
	seqs := NewSequences(count, 4, size)
	for i := range seqs.Data {
		seqs.Data[i] = value
	}
	return seqs
}

func TestComputeStats(t *testing.T) {
	ds, err := NewSequenceDataset(constantSequences(3, 4, 51), SequenceConfig{NumInput: 2, NumOutput: 2})
	require.NoError(t, err)

	stats, err := ComputeStats(ds, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, stats.Mean, 1e-6)
	assert.InDelta(t, 0, stats.Std, 1e-6)
	assert.Equal(t, 3*2*4*4, stats.Count)

	clip := NewClip(1, 1, 2, 2)
	for i := range clip.Data {
		clip.Data[i] = 0.2
	}
	stats.Standardize(clip)
	for _, v := range clip.Data {
		assert.InDelta(t, 0, v, 1e-6)
	}
}

func TestComputeStatsSpread(t *testing.T) {
	seqs := NewSequences(2, 2, 2)
	// sequence 0 is black, sequence 1 is white.
	for i := seqs.sequenceLen(); i < len(seqs.Data); i++ {
		seqs.Data[i] = 255
	}
	ds, err := NewSequenceDataset(seqs, SequenceConfig{NumInput: 1, NumOutput: 1})
	require.NoError(t, err)

	stats, err := ComputeStats(ds, []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stats.Mean, 1e-9)
	assert.Greater(t, stats.Std, 0.5)

	clip := NewClip(1, 1, 1, 1)
	clip.Data[0] = 1
	stats.Standardize(clip)
	assert.Greater(t, clip.Data[0], float32(0))

	_, err = ComputeStats(ds, []int{5})
	assert.Error(t, err)
}

func TestComputeStatsMovingDigits(t *testing.T) {
	pool := synth.Pool{synth.DiscSprite(4, 255)}
	cfg := smallConfig()
	cfg.Length = 6
	ds, err := NewMovingDigits(pool, cfg)
	require.NoError(t, err)

	stats, err := ComputeStats(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, 6*3*16*16, stats.Count)
	assert.True(t, stats.Mean > 0 && stats.Mean < 1)
}
