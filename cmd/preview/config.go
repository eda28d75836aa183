package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/pkg/errors"
)

// defaultConfigJSON is the embedded default configuration. -config files are
// decoded on top of it, so they only need the fields they change.
const defaultConfigJSON = `{
  "dataset": {
    "length": 10000,
    "objects": [2],
    "num_input": 5,
    "num_output": 5,
    "canvas_size": 64,
    "sprite_size": 0,
    "step_length": 0.1,
    "block_factor": 1,
    "threshold": null,
    "seed": 0,
    "deterministic": false,
    "batch_size": 32,
    "workers": 0
  },
  "preview": {
    "samples": 4,
    "scale": 4,
    "out_dir": "output",
    "plot": true,
    "eval_samples": 256
  },
  "export": {
    "path": "",
    "count": 0
  }
}
`

type datasetConfig struct {
	Length        int      `json:"length"`
	Objects       []int    `json:"objects"`
	NumInput      int      `json:"num_input"`
	NumOutput     int      `json:"num_output"`
	CanvasSize    int      `json:"canvas_size"`
	SpriteSize    int      `json:"sprite_size"`
	StepLength    float64  `json:"step_length"`
	BlockFactor   int      `json:"block_factor"`
	Threshold     *float32 `json:"threshold"`
	Seed          int64    `json:"seed"`
	Deterministic bool     `json:"deterministic"`
	BatchSize     int      `json:"batch_size"`
	Workers       int      `json:"workers"`
}

type previewConfig struct {
	// Samples is the number of PNG strips written.
	Samples int `json:"samples"`
	// Scale is the nearest-neighbour upscale factor of the strips.
	Scale       int    `json:"scale"`
	OutDir      string `json:"out_dir"`
	Plot        bool   `json:"plot"`
	EvalSamples int    `json:"eval_samples"`
}

type exportConfig struct {
	Path string `json:"path"`
	// Count of sequences exported; 0 exports dataset.length sequences.
	Count int `json:"count"`
}

type config struct {
	Dataset datasetConfig `json:"dataset"`
	Preview previewConfig `json:"preview"`
	Export  exportConfig  `json:"export"`
}

// loadConfig returns the embedded defaults, overlaid with the JSON file at
// path if it is not empty.
func loadConfig(path string) (config, error) {
	var cfg config
	if err := json.Unmarshal([]byte(defaultConfigJSON), &cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid embedded default config")
	}
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %q", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %q", path)
	}
	return cfg, nil
}

// movingConfig converts the dataset block for datasets.NewMovingDigits.
func (c config) movingConfig() datasets.Config {
	d := c.Dataset
	return datasets.Config{
		Length:        d.Length,
		NumObjects:    d.Objects,
		NumInput:      d.NumInput,
		NumOutput:     d.NumOutput,
		CanvasSize:    d.CanvasSize,
		SpriteSize:    d.SpriteSize,
		StepLength:    d.StepLength,
		BlockFactor:   d.BlockFactor,
		Threshold:     d.Threshold,
		Seed:          d.Seed,
		Deterministic: d.Deterministic,
		BatchSize:     d.BatchSize,
		Workers:       d.Workers,
	}
}

// sequenceConfig converts the dataset block for datasets.NewHeat.
func (c config) sequenceConfig() datasets.SequenceConfig {
	d := c.Dataset
	return datasets.SequenceConfig{
		NumInput:    d.NumInput,
		NumOutput:   d.NumOutput,
		BlockFactor: d.BlockFactor,
		Threshold:   d.Threshold,
		BatchSize:   d.BatchSize,
	}
}

// parseObjects parses a comma separated list of object counts, e.g. "1,2,3".
func parseObjects(s string) ([]int, error) {
	var counts []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid object count %q", part)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, errors.Errorf("no object counts in %q", s)
	}
	return counts, nil
}
