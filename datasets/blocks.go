package datasets

import (
	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
)

// BlockReshape rearranges a size x size frame into factor² channels of
// (size/factor)² pixels each:
//
//	out[a*factor+b][i][j] = in[i*factor+a][j*factor+b]
//
// Each channel is a strided sub-sampling of the frame. factor 1 returns a
// copy of the frame. BlockUnreshape is the inverse.
func BlockReshape(frame []float32, size, factor int) ([]float32, error) {
	if err := checkBlocks(len(frame), size, factor); err != nil {
		return nil, err
	}
	w := size / factor
	out := make([]float32, len(frame))
	for a := range factor {
		for b := range factor {
			ch := out[(a*factor+b)*w*w : (a*factor+b+1)*w*w]
			for i := range w {
				for j := range w {
					ch[i*w+j] = frame[(i*factor+a)*size+j*factor+b]
				}
			}
		}
	}
	return out, nil
}

// BlockUnreshape undoes BlockReshape.
func BlockUnreshape(blocks []float32, size, factor int) ([]float32, error) {
	if err := checkBlocks(len(blocks), size, factor); err != nil {
		return nil, err
	}
	w := size / factor
	out := make([]float32, len(blocks))
	for a := range factor {
		for b := range factor {
			ch := blocks[(a*factor+b)*w*w : (a*factor+b+1)*w*w]
			for i := range w {
				for j := range w {
					out[(i*factor+a)*size+j*factor+b] = ch[i*w+j]
				}
			}
		}
	}
	return out, nil
}

func checkBlocks(n, size, factor int) error {
	if factor <= 0 || size%factor != 0 {
		return errors.Wrapf(synth.ErrInvalidConfig, "block factor %d does not divide frame size %d", factor, size)
	}
	if n != size*size {
		return errors.Errorf("frame has %d values, expected %dx%d", n, size, size)
	}
	return nil
}
