package source

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/overlaysteg/internal/system"
)

type ImageSource struct {
	paths []string
}

// NewImageSource accepts a single image file or a directory; directories
// contribute every supported image directly inside them, sorted by name.
func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	if !fi.IsDir() {
		return &ImageSource{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && system.HasExtension(e.Name(), system.ImageExtensions...) {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(paths)

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

// PageName is the file's base name without extension.
func (s *ImageSource) PageName(index int) string {
	base := filepath.Base(s.paths[index])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PagePath is the file behind page index.
func (s *ImageSource) PagePath(index int) string {
	return s.paths[index]
}

// RenderPage decodes the image; dpi is meaningless for rasters and ignored.
func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("source: image %d out of range [0, %d)", index, len(s.paths))
	}

	img, _, err := DecodeFile(s.paths[index])
	return img, err
}

func (s *ImageSource) Close() error {
	return nil
}
