package main

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/ivlev/overlaysteg/internal/source"
)

// loadInput renders one page of any supported source and returns it with
// the page's name.
func loadInput(path string, page int) (image.Image, string, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	if src.PageCount() == 0 {
		return nil, "", fmt.Errorf("%s: no images found", path)
	}
	if page < 0 || page >= src.PageCount() {
		return nil, "", fmt.Errorf("%s: page %d out of range [0, %d)", path, page, src.PageCount())
	}

	img, err := src.RenderPage(page, cfg.Batch.DPI)
	if err != nil {
		return nil, "", err
	}
	return img, src.PageName(page), nil
}

// outputPath defaults to <name>_<suffix>.png beside the input.
func outputPath(explicit, input, name, suffix string) string {
	if explicit != "" {
		return explicit
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	return filepath.Join(filepath.Dir(input), fmt.Sprintf("%s_%s.png", name, suffix))
}
