package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is used to rasterize PDF pages when no DPI is given.
const DefaultDPI = 150

// Source yields the images a batch works through: the files of a directory,
// a single image, or the pages of a PDF.
type Source interface {
	PageCount() int
	PageName(index int) string
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks a Source for path: PDFs go through fitz, everything else is
// treated as an image file or a directory of images.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("source: open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// PageName is "<pdf base name>_p<1-based page>".
func (f *FitzPDFSource) PageName(index int) string {
	base := strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
	return fmt.Sprintf("%s_p%d", base, index+1)
}

// RenderPage opens its own document handle so pages can render in parallel.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= f.PageCount() {
		return nil, fmt.Errorf("source: page %d out of range [0, %d)", index, f.PageCount())
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.New(f.path)
	if err != nil {
		return nil, fmt.Errorf("source: open pdf %s: %w", f.path, err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("source: render page %d: %w", index, err)
	}
	return img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
