// Package synth generates bouncing-sprite video sequences: point particles
// reflecting inside the unit square, scaled to a canvas and rendered by
// compositing sprite patches with a pixel-wise maximum.
//
// All randomness comes from an explicit *rand.Rand passed by the caller, so a
// fixed seed always reproduces the same frames.
package synth

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is wrapped by every configuration error reported by this
// module (and the datasets built on top of it).
var ErrInvalidConfig = errors.New("invalid configuration")

// Point is a position inside the unit square.
type Point struct {
	X float64
	Y float64
}

// Trajectory holds the scaled pixel coordinates of one sprite, one entry per
// frame. Rows[i], Cols[i] is the top-left corner of the sprite at frame i.
type Trajectory struct {
	Rows []int
	Cols []int
}

// Len returns the number of frames in the trajectory.
func (t Trajectory) Len() int { return len(t.Rows) }

// Simulator holds the parameters of the bouncing simulation.
type Simulator struct {
	// CanvasSize is the width and height of every frame in pixels.
	CanvasSize int

	// SpriteSize is the width and height of every sprite in pixels.
	SpriteSize int

	// StepLength is the fraction of the unit square traversed per frame.
	StepLength float64
}

// NewSimulator validates the parameters and returns a Simulator.
func NewSimulator(canvasSize, spriteSize int, stepLength float64) (*Simulator, error) {
	if canvasSize <= 0 || spriteSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "canvas size (%d) and sprite size (%d) must be > 0", canvasSize, spriteSize)
	}
	if spriteSize >= canvasSize {
		return nil, errors.Wrapf(ErrInvalidConfig, "sprite size %d must be smaller than canvas size %d", spriteSize, canvasSize)
	}
	if !(stepLength > 0) || math.IsInf(stepLength, 0) {
		return nil, errors.Wrapf(ErrInvalidConfig, "step length must be a positive number, got %v", stepLength)
	}
	return &Simulator{
		CanvasSize: canvasSize,
		SpriteSize: spriteSize,
		StepLength: stepLength,
	}, nil
}

// DefaultSimulator returns the classic moving digits setup: 64x64 canvas,
// 28x28 sprites, step of 0.1.
func DefaultSimulator() *Simulator {
	return &Simulator{CanvasSize: 64, SpriteSize: 28, StepLength: 0.1}
}

// Margin is the largest valid top-left coordinate of a sprite.
func (s *Simulator) Margin() int {
	return s.CanvasSize - s.SpriteSize
}

// Walk simulates a point moving with heading theta inside the unit square,
// reflecting elastically on the borders. Each axis is checked independently,
// so a corner bounce flips both velocity components in the same step.
//
// Only post-step positions are recorded: the first entry already reflects one
// step away from start.
func Walk(start Point, theta, stepLength float64, n int) []Point {
	x, y := start.X, start.Y
	vx, vy := math.Cos(theta), math.Sin(theta)

	points := make([]Point, n)
	for i := range n {
		y += vy * stepLength
		x += vx * stepLength

		if x <= 0 {
			x = 0
			vx = -vx
		}
		if x >= 1.0 {
			x = 1.0
			vx = -vx
		}
		if y <= 0 {
			y = 0
			vy = -vy
		}
		if y >= 1.0 {
			y = 1.0
			vy = -vy
		}
		points[i] = Point{X: x, Y: y}
	}
	return points
}

// Scale converts unit-square points to pixel coordinates, truncating toward
// zero. The result always lies in [0, Margin()].
func (s *Simulator) Scale(points []Point) Trajectory {
	margin := float64(s.Margin())
	traj := Trajectory{
		Rows: make([]int, len(points)),
		Cols: make([]int, len(points)),
	}
	for i, p := range points {
		traj.Rows[i] = int(margin * p.Y)
		traj.Cols[i] = int(margin * p.X)
	}
	return traj
}

// Trajectory draws a random starting position and heading from rng and
// returns the scaled trajectory for n frames.
//
// Draw order is x, y, then theta.
func (s *Simulator) Trajectory(rng *rand.Rand, n int) Trajectory {
	start := Point{X: rng.Float64(), Y: rng.Float64()}
	theta := rng.Float64() * 2 * math.Pi
	return s.Scale(Walk(start, theta, s.StepLength, n))
}
