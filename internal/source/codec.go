package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	// WebP is decode-only in x/image; imaging registers the rest.
	_ "golang.org/x/image/webp"
)

// ErrEmptyData is returned when there are no bytes to decode.
var ErrEmptyData = errors.New("empty image data")

// DecodeBytes decodes an uploaded image, applying its EXIF orientation. It
// returns the detected format ("png", "jpeg", "webp", ...).
func DecodeBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("source: %w", ErrEmptyData)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("source: decode: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("source: decode %s: %w", format, err)
	}
	return img, format, nil
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string) (image.Image, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("source: %w", err)
	}

	img, format, err := DecodeBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return img, format, nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("source: encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path as PNG regardless of the path's extension.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Preview scales img down to fit within maxWidth, keeping the aspect ratio.
// Images already narrow enough, or a non-positive maxWidth, return img as is.
func Preview(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	return imaging.Fit(img, maxWidth, b.Dy(), imaging.Lanczos)
}

// PreviewGray is Preview for grayscale images. The result stays *image.Gray
// so a downscaled reveal is still a single-channel PNG.
func PreviewGray(img *image.Gray, maxWidth int) *image.Gray {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := int(float64(b.Dy())*float64(maxWidth)/float64(b.Dx()) + 0.5)
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
