// Package reveal stretches the contrast of an image so that faint overlays
// become easier to see.
//
// It is a plain enhancement filter: grayscale conversion followed by
// histogram equalization, optionally blended with the unequalized gray image.
package reveal

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidIntensity is returned for intensities outside [0, 1].
var ErrInvalidIntensity = errors.New("intensity outside [0, 1]")

// Reveal converts img to grayscale and blends it with its equalized version.
// Intensity 0 returns the grayscale image, 1 returns the equalized image.
func Reveal(img image.Image, intensity float64) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("reveal: nil image provided")
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("reveal: invalid image dimensions %dx%d", b.Dx(), b.Dy())
	}
	if intensity < 0 || intensity > 1 {
		return nil, fmt.Errorf("reveal: %w: %.3f", ErrInvalidIntensity, intensity)
	}

	gray := Grayscale(img)
	eq := Equalize(gray)

	if intensity >= 1 {
		return eq, nil
	}
	return Blend(gray, eq, intensity), nil
}

// Blend returns (1-t)*a + t*b per pixel, truncated to 8 bits. a and b must
// share bounds.
func Blend(a, b *image.Gray, t float64) *image.Gray {
	out := image.NewGray(a.Rect)
	for y := 0; y < a.Rect.Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+a.Rect.Dx()]
		rb := b.Pix[y*b.Stride : y*b.Stride+b.Rect.Dx()]
		ro := out.Pix[y*out.Stride : y*out.Stride+out.Rect.Dx()]
		for x := range ro {
			ro[x] = uint8((1-t)*float64(ra[x]) + t*float64(rb[x]))
		}
	}
	return out
}
