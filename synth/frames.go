package synth

import (
	"math/rand"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Frame is a single-channel square canvas, row-major, on the [0,255] scale.
type Frame struct {
	Size int
	Pix  []float32
}

// NewFrame returns a zeroed size x size frame.
func NewFrame(size int) Frame {
	return Frame{Size: size, Pix: make([]float32, size*size)}
}

// At returns the value at row y, column x.
func (f Frame) At(y, x int) float32 {
	return f.Pix[y*f.Size+x]
}

// Composite draws sprite onto frame with its top-left corner at (row, col),
// keeping the pixel-wise maximum of both. Overlapping sprites never get
// brighter than the brightest of them.
//
// The sprite must fit in the frame; trajectories produced by a Simulator
// always do.
func Composite(frame *Frame, sprite Sprite, row, col int) {
	for y := range sprite.Size {
		dst := frame.Pix[(row+y)*frame.Size+col : (row+y)*frame.Size+col+sprite.Size]
		src := sprite.Pix[y*sprite.Size : (y+1)*sprite.Size]
		for x, v := range src {
			if fv := float32(v); fv > dst[x] {
				dst[x] = fv
			}
		}
	}
}

// Render returns n blank frames with sprites[k] composited along trajs[k]
// for every k. Every trajectory must be n frames long; with no sprites the
// frames stay blank.
func (s *Simulator) Render(n int, trajs []Trajectory, sprites []Sprite) ([]Frame, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "sequence length must be > 0, got %d", n)
	}
	if len(trajs) != len(sprites) {
		return nil, errors.Errorf("got %d trajectories for %d sprites", len(trajs), len(sprites))
	}
	for k, traj := range trajs {
		if traj.Len() != n || len(traj.Cols) != n {
			return nil, errors.Errorf("trajectory %d has %d frames, expected %d", k, traj.Len(), n)
		}
		if sprites[k].Size != s.SpriteSize {
			return nil, errors.Wrapf(ErrInvalidConfig, "sprite %d has size %d, simulator uses %d", k, sprites[k].Size, s.SpriteSize)
		}
	}

	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = NewFrame(s.CanvasSize)
	}
	for k, traj := range trajs {
		for i := range n {
			Composite(&frames[i], sprites[k], traj.Rows[i], traj.Cols[i])
		}
	}
	return frames, nil
}

// Sequence generates n frames showing numSprites bouncing sprites drawn with
// replacement from pool. For each sprite a trajectory is drawn first and
// then the pool index, both from rng.
//
// The trajectories are returned alongside the frames for inspection.
func (s *Simulator) Sequence(rng *rand.Rand, numSprites, n int, pool Pool) ([]Frame, []Trajectory, error) {
	if err := pool.Validate(); err != nil {
		return nil, nil, err
	}
	if pool.SpriteSize() != s.SpriteSize {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "pool sprite size %d does not match simulator sprite size %d",
			pool.SpriteSize(), s.SpriteSize)
	}
	if numSprites < 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "number of sprites must be >= 0, got %d", numSprites)
	}
	if n <= 0 {
		return nil, nil, errors.Wrapf(ErrInvalidConfig, "sequence length must be > 0, got %d", n)
	}

	trajs := make([]Trajectory, numSprites)
	sprites := make([]Sprite, numSprites)
	for k := range numSprites {
		trajs[k] = s.Trajectory(rng, n)
		sprites[k] = pool[rng.Intn(len(pool))]
	}
	klog.V(2).Infof("synth: rendering %d sprites over %d frames", numSprites, n)

	frames, err := s.Render(n, trajs, sprites)
	if err != nil {
		return nil, nil, err
	}
	return frames, trajs, nil
}
