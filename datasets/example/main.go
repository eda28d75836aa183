package main

// Example command that builds a small moving digits dataset and walks one
// epoch through the gomlx-style Yield interface, printing the tensor shapes.
//
// Usage:
//   go run ./datasets/example [path/to/train-images-idx3-ubyte.gz | dir]
//
// Without an argument synthetic disc sprites are used instead of digits.

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/Noofbiz/movingDigits/synth"
)

func main() {
	var pool synth.Pool
	if len(os.Args) > 1 {
		path, err := datasets.FindSpriteArchive(os.Args[1])
		if err != nil {
			log.Fatalf("failed to find sprite archive: %v", err)
		}
		pool, err = datasets.LoadSprites(path)
		if err != nil {
			log.Fatalf("failed to load sprites: %v", err)
		}
		fmt.Printf("Using %d sprites from %s\n", len(pool), path)
	} else {
		pool = synth.Pool{synth.DiscSprite(28, 255), synth.DiscSprite(28, 160)}
		fmt.Println("Using synthetic disc sprites")
	}

	cfg := datasets.DefaultConfig()
	cfg.Length = 64
	cfg.NumObjects = []int{1, 2, 3}
	cfg.BatchSize = 16
	cfg.Seed = 42
	ds, err := datasets.NewMovingDigits(pool, cfg)
	if err != nil {
		log.Fatalf("failed to create dataset: %v", err)
	}
	fmt.Printf("%s: %d samples, %d input + %d output frames of %dx%d\n",
		ds.Name(), ds.Len(), cfg.NumInput, cfg.NumOutput, cfg.CanvasSize, cfg.CanvasSize)

	// One sample, straight from the generator.
	s, err := ds.Example(0)
	if err != nil {
		log.Fatalf("failed to generate sample: %v", err)
	}
	fmt.Printf("  Example input %v, output %v\n", s.Input.Dims(), s.Output.Dims())

	stats, err := datasets.ComputeStats(ds, nil)
	if err != nil {
		log.Fatalf("failed to compute stats: %v", err)
	}
	fmt.Printf("  Input pixel mean=%.4f std=%.4f over %d pixels\n", stats.Mean, stats.Std, stats.Count)

	// A full epoch in batches, as a gomlx trainer would consume it.
	ds.Shuffle(7)
	batches := 0
	for {
		_, inputs, labels, err := ds.Yield()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to yield batch: %v", err)
		}
		if batches == 0 {
			fmt.Printf("  Batch tensors: input=%s label=%s\n", inputs[0].Shape(), labels[0].Shape())
		}
		batches++
	}
	fmt.Printf("Epoch done: %d batches\n", batches)
}
