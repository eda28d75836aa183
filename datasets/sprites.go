package datasets

import (
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"

	"github.com/Noofbiz/movingDigits/synth"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// idxImageMagic identifies IDX files holding unsigned byte images
// (e.g. train-images-idx3-ubyte.gz).
const idxImageMagic = 0x00000803

type idxImageHeader struct {
	Magic     int32
	NumImages int32
	Rows      int32
	Cols      int32
}

// LoadSprites reads a gzip'ed IDX image archive and returns its images as a
// sprite pool, in file order. Images must be square.
func LoadSprites(path string) (synth.Pool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sprite archive %q", path)
	}
	defer f.Close()

	reader, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "%q is not gzip compressed", path)
	}
	defer reader.Close()

	pool, err := ReadSprites(reader)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read %q", path)
	}
	klog.V(1).Infof("loaded %d sprites of %dx%d from %s", len(pool), pool.SpriteSize(), pool.SpriteSize(), path)
	return pool, nil
}

// ReadSprites parses an uncompressed IDX image stream.
func ReadSprites(r io.Reader) (synth.Pool, error) {
	var header idxImageHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read IDX header")
	}
	if header.Magic != idxImageMagic {
		return nil, errors.Errorf("invalid IDX image magic 0x%08x", header.Magic)
	}
	if header.Rows != header.Cols || header.Rows <= 0 {
		return nil, errors.Wrapf(synth.ErrInvalidConfig, "sprites must be square, got %dx%d", header.Rows, header.Cols)
	}
	if header.NumImages <= 0 {
		return nil, errors.Wrap(synth.ErrInvalidConfig, "sprite pool is empty")
	}

	size := int(header.Rows)
	pool := make(synth.Pool, header.NumImages)
	for i := range pool {
		pix := make([]uint8, size*size)
		if _, err := io.ReadFull(r, pix); err != nil {
			return nil, errors.Wrapf(err, "failed to read sprite %d of %d", i, header.NumImages)
		}
		pool[i] = synth.Sprite{Size: size, Pix: pix}
	}
	return pool, nil
}

// WriteSprites writes pool as an uncompressed IDX image stream, the inverse
// of ReadSprites.
func WriteSprites(w io.Writer, pool synth.Pool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	size := int32(pool.SpriteSize())
	header := idxImageHeader{Magic: idxImageMagic, NumImages: int32(len(pool)), Rows: size, Cols: size}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return errors.Wrap(err, "failed to write IDX header")
	}
	for i, s := range pool {
		if _, err := w.Write(s.Pix); err != nil {
			return errors.Wrapf(err, "failed to write sprite %d", i)
		}
	}
	return nil
}
