package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Thomazoide/superform-av/internal/utils"
)

// PhotoStore writes uploaded photos under a base directory.
type PhotoStore struct {
	Dir string
}

// NewPhotoStore returns a store rooted at dir.
func NewPhotoStore(dir string) *PhotoStore {
	return &PhotoStore{Dir: dir}
}

// Save writes the photo bytes to a collision-free file named after the
// original extension and returns the stored path.
func (s *PhotoStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	if len(ext) > 8 {
		ext = ext[:8]
	}
	name := fmt.Sprintf("photo_%d_%s%s", time.Now().UnixNano(), utils.RandString(8), ext)
	dst := filepath.Join(s.Dir, name)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", err
	}
	return dst, nil
}
