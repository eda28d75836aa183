package main

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// trajectoryXYs converts a trajectory to plot points. Rows grow downwards in
// the frames, so they are negated to keep the plot in the same orientation.
func trajectoryXYs(traj synth.Trajectory) plotter.XYs {
	xys := make(plotter.XYs, traj.Len())
	for i := range xys {
		xys[i].X = float64(traj.Cols[i])
		xys[i].Y = -float64(traj.Rows[i])
	}
	return xys
}

// plotTrajectories writes a PNG with the top-left corner path of every sprite
// of one sample, the first position marked with a dot.
func plotTrajectories(path string, trajs []synth.Trajectory, margin int) error {
	p := plot.New()
	p.Title.Text = "Sprite trajectories (top-left corner, pixels)"
	p.X.Label.Text = "column"
	p.Y.Label.Text = "-row"

	palette := []color.RGBA{
		{R: 20, G: 80, B: 200, A: 220},
		{R: 200, G: 30, B: 30, A: 220},
		{R: 40, G: 140, B: 40, A: 220},
		{R: 200, G: 140, B: 20, A: 220},
	}
	for i, traj := range trajs {
		xys := trajectoryXYs(traj)
		if len(xys) == 0 {
			continue
		}
		col := palette[i%len(palette)]
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return errors.Wrapf(err, "trajectory %d", i)
		}
		line.Color = col
		line.Width = vg.Points(1.2)
		points.Color = col
		points.Radius = vg.Points(1.5)
		p.Add(line, points)

		start, err := plotter.NewScatter(xys[:1])
		if err != nil {
			return err
		}
		start.GlyphStyle.Color = col
		start.GlyphStyle.Radius = vg.Points(4)
		p.Add(start)
		p.Legend.Add("sprite "+string(rune('A'+i%26)), line)
	}
	p.Add(plotter.NewGrid())

	// Corners can only reach [0, margin] on both axes.
	lo, hi := plotAxis(margin)
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = -hi, -lo

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %q", path)
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// plotAxis returns the [0, margin] range padded by 5% on each side, at least
// one pixel.
func plotAxis(margin int) (lo, hi float64) {
	pad := max(0.05*float64(margin), 1)
	return -pad, float64(margin) + pad
}
