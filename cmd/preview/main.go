// Command preview generates moving digits (or heat diffusion) samples and
// writes what they look like: PNG strips of input and target frames, a plot
// of the sprite trajectories, an optional .npy export of raw sequences and
// the error of the persistence and linear baselines.
//
// Usage:
//
//	go run ./cmd/preview -sprites ~/data/mnist -n 8 -objects 1,2,3 -out-dir output
//
// Without -sprites, synthetic disc sprites are used.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Noofbiz/movingDigits/baseline"
	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/Noofbiz/movingDigits/synth"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	opts := registerFlags(flag.CommandLine)
	flag.Parse()
	defer klog.Flush()

	if opts.writeDefault != "" {
		if err := os.WriteFile(opts.writeDefault, []byte(defaultConfigJSON), 0644); err != nil {
			klog.Fatalf("failed to write default config: %v", err)
		}
		klog.Infof("Wrote default config to %s", opts.writeDefault)
		return
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		klog.Fatalf("%+v", err)
	}
	if err := applyFlags(&cfg, flag.CommandLine); err != nil {
		klog.Fatalf("%v", err)
	}

	if opts.printEffectiveConfig {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			klog.Fatalf("failed to marshal effective config: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	var (
		ds     datasets.Dataset
		moving *datasets.MovingDigits
	)
	if strings.TrimSpace(opts.heatPath) != "" {
		heat, err := datasets.NewHeat(opts.heatPath, cfg.sequenceConfig())
		if err != nil {
			klog.Fatalf("failed to load heat dataset: %+v", err)
		}
		ds = heat
	} else {
		pool, err := loadPool(opts.spritesPath, cfg.Dataset.SpriteSize)
		if err != nil {
			klog.Fatalf("failed to load sprites: %+v", err)
		}
		moving, err = datasets.NewMovingDigits(pool, cfg.movingConfig())
		if err != nil {
			klog.Fatalf("failed to create dataset: %+v", err)
		}
		ds = moving
	}
	klog.Infof("%s: %s samples", ds.Name(), humanize.Comma(int64(ds.Len())))

	if err := os.MkdirAll(cfg.Preview.OutDir, 0755); err != nil {
		klog.Fatalf("failed to create output directory: %v", err)
	}

	samples, trajs, err := previewSamples(ds, moving, firstIndices(min(cfg.Preview.Samples, ds.Len())))
	if err != nil {
		klog.Fatalf("failed to generate preview samples: %+v", err)
	}
	if len(samples) > 0 {
		paths, err := writeStrips(ds.Name(), samples, cfg.Preview.Scale, cfg.Preview.OutDir)
		if err != nil {
			klog.Fatalf("failed to write sample strips: %+v", err)
		}
		klog.Infof("Wrote %d sample strips to %s", len(paths), cfg.Preview.OutDir)
	}

	if moving != nil && cfg.Preview.Plot {
		if len(samples) == 0 {
			if _, trajs, err = moving.ExampleWithTrajectories(0); err != nil {
				klog.Fatalf("failed to generate trajectories: %+v", err)
			}
		}
		path := filepath.Join(cfg.Preview.OutDir, "trajectories.png")
		if err := plotTrajectories(path, trajs, moving.Simulator().Margin()); err != nil {
			klog.Fatalf("failed to plot trajectories: %v", err)
		}
		klog.Infof("Trajectory plot written to %s", path)
	}

	if cfg.Export.Path != "" {
		if moving == nil {
			klog.Warningf("-export-npy only applies to the moving digits dataset, skipping")
		} else if err := exportSequences(moving, cfg.Export); err != nil {
			klog.Fatalf("failed to export sequences: %+v", err)
		}
	}

	if n := min(cfg.Preview.EvalSamples, ds.Len()); n > 0 {
		reports, err := baseline.EvaluateAll(ds, []baseline.Predictor{baseline.Persistence{}, baseline.Linear{}}, firstIndices(n))
		if err != nil {
			klog.Errorf("baseline evaluation failed: %+v", err)
			return
		}
		for _, r := range reports {
			klog.Infof("Baseline %s", r)
		}
	}
}

// loadPool loads the sprite archive found at path, or builds a pool of
// synthetic discs of spriteSize (28 if 0) when path is empty.
func loadPool(path string, spriteSize int) (synth.Pool, error) {
	if strings.TrimSpace(path) == "" {
		if spriteSize == 0 {
			spriteSize = 28
		}
		pool := make(synth.Pool, 8)
		for i := range pool {
			pool[i] = synth.DiscSprite(spriteSize, uint8(255-24*i))
		}
		klog.Infof("No -sprites given, using %d synthetic %dx%d discs", len(pool), spriteSize, spriteSize)
		return pool, nil
	}
	archive, err := datasets.FindSpriteArchive(path)
	if err != nil {
		return nil, err
	}
	return datasets.LoadSprites(archive)
}

// exportSequences precomputes raw sequences and saves them as .npy.
func exportSequences(ds *datasets.MovingDigits, cfg exportConfig) error {
	count := cfg.Count
	if count <= 0 {
		count = ds.Len()
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Rendering"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("sequences"),
		progressbar.OptionSetTheme(progressbar.ThemeUnicode),
	)
	seqs, err := ds.Precompute(count, func() { _ = bar.Add(1) })
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %q", cfg.Path)
	}
	if err := seqs.WriteNpy(cfg.Path); err != nil {
		return err
	}
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %q", cfg.Path)
	}
	klog.Infof("Exported %s sequences of %d frames to %s (%s)",
		humanize.Comma(int64(seqs.Count)), seqs.Length, cfg.Path, humanize.Bytes(uint64(info.Size())))
	return nil
}

func firstIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
