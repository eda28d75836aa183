package main

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/Noofbiz/movingDigits/datasets"
	"github.com/Noofbiz/movingDigits/synth"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// clipFrames turns every frame of clip back into a grayscale image, undoing
// the block reshape when the clip has more than one channel.
func clipFrames(clip datasets.Clip) ([]*image.Gray, error) {
	factor := 1
	for factor*factor < clip.Channels {
		factor++
	}
	if factor*factor != clip.Channels {
		return nil, errors.Errorf("%d channels is not a square block factor", clip.Channels)
	}
	size := clip.Height * factor

	images := make([]*image.Gray, clip.Frames)
	for f := range clip.Frames {
		pix := clip.Frame(f)
		if factor > 1 {
			var err error
			if pix, err = datasets.BlockUnreshape(pix, size, factor); err != nil {
				return nil, err
			}
		}
		img := image.NewGray(image.Rect(0, 0, size, size))
		for j, v := range pix {
			img.Pix[j] = datasets.Denormalize(v)
		}
		images[f] = img
	}
	return images, nil
}

// sampleStrip lays out the input frames of s on a top row and the target
// frames on a bottom row, separated by a 1 pixel grey border, then upscales
// the result by scale.
func sampleStrip(s *datasets.Sample, scale int) (image.Image, error) {
	inputs, err := clipFrames(s.Input)
	if err != nil {
		return nil, err
	}
	outputs, err := clipFrames(s.Output)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 && len(outputs) == 0 {
		return nil, errors.New("sample has no frames")
	}

	var size int
	if len(inputs) > 0 {
		size = inputs[0].Bounds().Dx()
	} else {
		size = outputs[0].Bounds().Dx()
	}
	cols := max(len(inputs), len(outputs))
	const border = 1
	width := cols*(size+border) + border
	height := 2*(size+border) + border

	strip := imaging.New(width, height, color.Gray{Y: 96})
	for row, frames := range [][]*image.Gray{inputs, outputs} {
		for col, img := range frames {
			at := image.Pt(border+col*(size+border), border+row*(size+border))
			strip = imaging.Paste(strip, img, at)
		}
	}
	if scale > 1 {
		return imaging.Resize(strip, width*scale, height*scale, imaging.NearestNeighbor), nil
	}
	return strip, nil
}

// previewSamples reads the samples at indices. For moving digits it also
// returns the trajectories of the first one, taken from the same draw so the
// plot matches its strip.
func previewSamples(ds datasets.Dataset, moving *datasets.MovingDigits, indices []int) ([]*datasets.Sample, []synth.Trajectory, error) {
	if moving == nil {
		samples, err := ds.Batch(indices)
		return samples, nil, err
	}
	samples := make([]*datasets.Sample, len(indices))
	var first []synth.Trajectory
	for i, idx := range indices {
		s, trajs, err := moving.ExampleWithTrajectories(idx)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			first = trajs
		}
		samples[i] = s
	}
	return samples, first, nil
}

// writeStrips saves one PNG strip per sample into outDir, numbered by
// position.
func writeStrips(name string, samples []*datasets.Sample, scale int, outDir string) ([]string, error) {
	paths := make([]string, len(samples))
	for i, s := range samples {
		img, err := sampleStrip(s, scale)
		if err != nil {
			return nil, errors.WithMessagef(err, "sample %d", i)
		}
		paths[i] = filepath.Join(outDir, fmt.Sprintf("%s_%04d.png", name, i))
		if err := imaging.Save(img, paths[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to save %q", paths[i])
		}
	}
	return paths, nil
}
