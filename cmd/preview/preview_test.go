package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/Noofbiz/movingDigits/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, datasets.DefaultConfig().Length, cfg.Dataset.Length)
	assert.Equal(t, []int{2}, cfg.Dataset.Objects)
	assert.Nil(t, cfg.Dataset.Threshold)
	assert.True(t, cfg.Preview.Plot)

	path := filepath.Join(t.TempDir(), "cfg.json")
	overlay := `{"dataset": {"objects": [1, 3], "threshold": 0.4, "canvas_size": 32}, "export": {"count": 12}}`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, cfg.Dataset.Objects)
	require.NotNil(t, cfg.Dataset.Threshold)
	assert.InDelta(t, 0.4, *cfg.Dataset.Threshold, 1e-6)
	assert.Equal(t, 32, cfg.Dataset.CanvasSize)
	assert.Equal(t, 5, cfg.Dataset.NumInput)
	assert.Equal(t, 12, cfg.Export.Count)

	mc := cfg.movingConfig()
	assert.Equal(t, []int{1, 3}, mc.NumObjects)
	assert.Equal(t, 32, mc.CanvasSize)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = loadConfig(path)
	assert.Error(t, err)
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestParseObjects(t *testing.T) {
	counts, err := parseObjects("1, 2,3,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, counts)

	_, err = parseObjects("1,x")
	assert.Error(t, err)
	_, err = parseObjects(" , ")
	assert.Error(t, err)
}

func TestSampleStrip(t *testing.T) {
	cfg := datasets.DefaultConfig()
	cfg.Length = 3
	cfg.CanvasSize = 16
	cfg.SpriteSize = 4
	cfg.NumInput, cfg.NumOutput = 3, 2
	cfg.BlockFactor = 2
	cfg.Seed = 5
	pool := synth.Pool{synth.DiscSprite(4, 255)}
	ds, err := datasets.NewMovingDigits(pool, cfg)
	require.NoError(t, err)

	s, err := ds.Example(0)
	require.NoError(t, err)
	frames, err := clipFrames(s.Input)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, 16, frames[0].Bounds().Dx())

	img, err := sampleStrip(s, 2)
	require.NoError(t, err)
	// 3 columns and 2 rows of 16 pixel frames with 1 pixel borders, doubled.
	assert.Equal(t, 2*(3*17+1), img.Bounds().Dx())
	assert.Equal(t, 2*(2*17+1), img.Bounds().Dy())

	outDir := t.TempDir()
	samples, err := ds.Batch([]int{0, 2})
	require.NoError(t, err)
	paths, err := writeStrips(ds.Name(), samples, 1, outDir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(outDir, "MovingDigits_0001.png"), paths[1])
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = clipFrames(datasets.NewClip(1, 3, 4, 4))
	assert.Error(t, err)
}

func TestPlotTrajectories(t *testing.T) {
	sim := synth.DefaultSimulator()
	trajs := []synth.Trajectory{
		sim.Scale(synth.Walk(synth.Point{X: 0.2, Y: 0.3}, 0.5, sim.StepLength, 10)),
		sim.Scale(synth.Walk(synth.Point{X: 0.8, Y: 0.9}, 2.5, sim.StepLength, 10)),
	}
	path := filepath.Join(t.TempDir(), "plots", "trajectories.png")
	require.NoError(t, plotTrajectories(path, trajs, sim.Margin()))
	assert.FileExists(t, path)

	lo, hi := plotAxis(sim.Margin())
	for _, xy := range trajectoryXYs(trajs[0]) {
		assert.True(t, xy.X > lo && xy.X < hi)
		assert.True(t, -xy.Y > lo && -xy.Y < hi)
	}
	lo, hi = plotAxis(4)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 5.0, hi)
}

func TestPreviewSamplesMatchTrajectories(t *testing.T) {
	cfg := datasets.DefaultConfig()
	cfg.Length = 5
	cfg.CanvasSize = 16
	cfg.SpriteSize = 4
	cfg.NumObjects = []int{1, 2}
	cfg.NumInput, cfg.NumOutput = 3, 2
	cfg.Seed = 11
	sprite := synth.DiscSprite(4, 255)
	ds, err := datasets.NewMovingDigits(synth.Pool{sprite}, cfg)
	require.NoError(t, err)

	samples, trajs, err := previewSamples(ds, ds, []int{0, 1, 2})
	require.NoError(t, err)
	require.Len(t, samples, 3)
	require.NotEmpty(t, trajs)

	// Re-rendering the returned trajectories reproduces the first strip.
	sprites := make([]synth.Sprite, len(trajs))
	for i := range sprites {
		sprites[i] = sprite
	}
	frames, err := ds.Simulator().Render(5, trajs, sprites)
	require.NoError(t, err)
	want, err := datasets.SplitAndNormalize(frames, datasets.SplitOptions{NumInput: 3, NumOutput: 2})
	require.NoError(t, err)
	assert.Equal(t, want, samples[0])

	heat, err := datasets.NewSequenceDataset(datasets.NewSequences(2, 4, 8), datasets.SequenceConfig{NumInput: 2, NumOutput: 2})
	require.NoError(t, err)
	samples, trajs, err = previewSamples(heat, nil, []int{1})
	require.NoError(t, err)
	assert.Len(t, samples, 1)
	assert.Nil(t, trajs)
}

func TestApplyFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	overlay := `{"dataset": {"threshold": 0.4, "num_input": 7, "seed": 3}, "preview": {"plot": true}}`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	opts := registerFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-config", path, "-threshold", "-1", "-objects", "0,2", "-seed", "9",
		"-plot=false", "-out-dir", "strips", "-n", "2",
	}))
	require.NoError(t, applyFlags(&cfg, fs))

	assert.Equal(t, path, opts.configPath)
	assert.Nil(t, cfg.Dataset.Threshold)
	assert.Equal(t, []int{0, 2}, cfg.Dataset.Objects)
	assert.Equal(t, int64(9), cfg.Dataset.Seed)
	assert.False(t, cfg.Preview.Plot)
	assert.Equal(t, "strips", cfg.Preview.OutDir)
	assert.Equal(t, 2, cfg.Preview.Samples)
	// Flags left at their defaults don't override the JSON.
	assert.Equal(t, 7, cfg.Dataset.NumInput)

	fs = flag.NewFlagSet("preview", flag.ContinueOnError)
	registerFlags(fs)
	require.NoError(t, fs.Parse([]string{"-threshold", "0.25"}))
	require.NoError(t, applyFlags(&cfg, fs))
	require.NotNil(t, cfg.Dataset.Threshold)
	assert.InDelta(t, 0.25, *cfg.Dataset.Threshold, 1e-6)

	fs = flag.NewFlagSet("preview", flag.ContinueOnError)
	registerFlags(fs)
	require.NoError(t, fs.Parse([]string{"-objects", "two"}))
	assert.Error(t, applyFlags(&cfg, fs))
}

func TestLoadPool(t *testing.T) {
	pool, err := loadPool("", 0)
	require.NoError(t, err)
	require.NoError(t, pool.Validate())
	assert.Equal(t, 28, pool.SpriteSize())

	_, err = loadPool(t.TempDir(), 0)
	assert.Error(t, err)
}

func TestExportSequences(t *testing.T) {
	cfg := datasets.DefaultConfig()
	cfg.Length = 4
	cfg.CanvasSize = 8
	cfg.SpriteSize = 4
	cfg.NumInput, cfg.NumOutput = 2, 2
	cfg.Seed = 3
	ds, err := datasets.NewMovingDigits(synth.Pool{synth.DiscSprite(4, 200)}, cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export", "seqs.npy")
	require.NoError(t, exportSequences(ds, exportConfig{Path: path, Count: 3}))

	seqs, err := datasets.LoadSequences(path)
	require.NoError(t, err)
	assert.Equal(t, 3, seqs.Count)
	assert.Equal(t, 4, seqs.Length)
	assert.Equal(t, 8, seqs.Size)
}
