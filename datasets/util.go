package datasets

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// spriteArchiveNames are the usual names of the digit glyph archive.
var spriteArchiveNames = []string{
	"train-images-idx3-ubyte.gz",
	"train_images.gz",
	"t10k-images-idx3-ubyte.gz",
}

// FindSpriteArchive returns path itself if it is a file, or the first known
// sprite archive found inside the directory path.
func FindSpriteArchive(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to stat %q", path)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range spriteArchiveNames {
		candidate := filepath.Join(path, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	matches, err := filepath.Glob(filepath.Join(path, "*images*.gz"))
	if err == nil && len(matches) > 0 {
		return matches[0], nil
	}
	return "", errors.Errorf("no sprite archive found in %s", path)
}
