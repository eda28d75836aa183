package synth

import (
	"github.com/pkg/errors"
)

// Sprite is an immutable square grayscale patch, stored row-major.
type Sprite struct {
	Size int
	Pix  []uint8
}

// At returns the intensity at row y, column x.
func (s Sprite) At(y, x int) uint8 {
	return s.Pix[y*s.Size+x]
}

// Pool is the ordered collection sprites are drawn from. A sprite's identity
// is its index in the pool.
type Pool []Sprite

// SpriteSize returns the size shared by all sprites, or 0 for an empty pool.
func (p Pool) SpriteSize() int {
	if len(p) == 0 {
		return 0
	}
	return p[0].Size
}

// Validate checks that the pool is non-empty and holds equally sized, well
// formed sprites.
func (p Pool) Validate() error {
	if len(p) == 0 {
		return errors.Wrap(ErrInvalidConfig, "sprite pool is empty")
	}
	size := p[0].Size
	for i, s := range p {
		if s.Size <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "sprite %d has size %d", i, s.Size)
		}
		if s.Size != size {
			return errors.Wrapf(ErrInvalidConfig, "sprite %d has size %d, pool uses %d", i, s.Size, size)
		}
		if len(s.Pix) != s.Size*s.Size {
			return errors.Wrapf(ErrInvalidConfig, "sprite %d has %d pixels, expected %d", i, len(s.Pix), s.Size*s.Size)
		}
	}
	return nil
}

// DiscSprite returns a filled disc of the given intensity, touching the
// borders of a size x size patch. Handy when no glyph archive is around.
func DiscSprite(size int, intensity uint8) Sprite {
	s := Sprite{Size: size, Pix: make([]uint8, size*size)}
	c := float64(size-1) / 2
	r2 := float64(size) * float64(size) / 4
	for y := range size {
		for x := range size {
			dy, dx := float64(y)-c, float64(x)-c
			if dx*dx+dy*dy <= r2 {
				s.Pix[y*size+x] = intensity
			}
		}
	}
	return s
}
