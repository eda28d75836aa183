package main

import (
	"flag"

	"github.com/Noofbiz/movingDigits/datasets"
)

// options are the flags that select inputs and modes rather than override
// config values.
type options struct {
	configPath           string
	writeDefault         string
	printEffectiveConfig bool
	spritesPath          string
	heatPath             string
}

// registerFlags defines the command line on fs. Config overrides are read
// back by applyFlags, only for the flags given explicitly.
func registerFlags(fs *flag.FlagSet) *options {
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to a JSON config overlaid on the embedded defaults")
	fs.StringVar(&opts.writeDefault, "write-default-config", "", "write the embedded default config to this path and exit")
	fs.BoolVar(&opts.printEffectiveConfig, "print-effective-config", false, "print the effective (JSON+CLI merged) configuration and exit")
	fs.StringVar(&opts.spritesPath, "sprites", "", "IDX image archive, or a directory holding one; synthetic discs when empty")
	fs.StringVar(&opts.heatPath, "heat", "", "path to a heat diffusion .npy file; replaces the moving digits dataset")

	fs.Int("n", 4, "number of sample strips to write")
	fs.String("objects", "2", "comma-separated choices for the number of sprites per sample, e.g. '1,2,3'")
	fs.Int("in", 5, "number of input frames")
	fs.Int("out", 5, "number of output (target) frames")
	fs.Float64("threshold", -1, "binarize frames at this normalized intensity (negative disables)")
	fs.Int("block", 1, "spatial-to-channel block factor")
	fs.Int64("seed", 0, "random seed (0 = time based)")
	fs.String("out-dir", "output", "output directory for strips and plots")
	fs.String("export-npy", "", "if set, precompute sequences and save them to this .npy path")
	fs.Bool("plot", true, "write a trajectory plot of the first sample")
	fs.Int("eval-n", 256, "number of samples to evaluate the baselines on (0 disables)")
	return opts
}

// applyFlags copies the flags explicitly set on fs into cfg, so they take
// precedence over the JSON config. A negative -threshold clears it.
func applyFlags(cfg *config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if err != nil || !ok {
			return
		}
		v := getter.Get()
		switch f.Name {
		case "n":
			cfg.Preview.Samples = v.(int)
		case "objects":
			var counts []int
			if counts, err = parseObjects(v.(string)); err == nil {
				cfg.Dataset.Objects = counts
			}
		case "in":
			cfg.Dataset.NumInput = v.(int)
		case "out":
			cfg.Dataset.NumOutput = v.(int)
		case "threshold":
			if th := v.(float64); th < 0 {
				cfg.Dataset.Threshold = nil
			} else {
				cfg.Dataset.Threshold = datasets.Threshold(float32(th))
			}
		case "block":
			cfg.Dataset.BlockFactor = v.(int)
		case "seed":
			cfg.Dataset.Seed = v.(int64)
		case "out-dir":
			cfg.Preview.OutDir = v.(string)
		case "export-npy":
			cfg.Export.Path = v.(string)
		case "plot":
			cfg.Preview.Plot = v.(bool)
		case "eval-n":
			cfg.Preview.EvalSamples = v.(int)
		}
	})
	return err
}
