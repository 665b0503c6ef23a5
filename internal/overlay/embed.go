// Package overlay hides a short message in an image as a faint white overlay.
//
// The message is drawn onto a transparent layer at no more than half opacity
// and composited over the source. Nothing is encoded at the bit level: the
// overlay is visible, just hard to notice until contrast is stretched (see
// package reveal).
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/ivlev/overlaysteg/internal/system"
	"golang.org/x/image/draw"
)

// ErrInvalidOptions is wrapped by every parameter validation failure.
var ErrInvalidOptions = errors.New("invalid overlay options")

// Options describes one overlay.
type Options struct {
	Message  string
	Strength float64 // 0 (invisible) to 1 (half opacity)
	HOffset  float64 // -1 left, 0 center, 1 right
	VOffset  float64 // -1 top, 0 center, 1 bottom
	FontSize int     // pixels
	FontName string  // empty means DefaultFontName
	Pattern  string  // PatternText (default) or PatternQR
}

// Validate checks parameter ranges.
func (o Options) Validate() error {
	switch {
	case o.Strength < 0 || o.Strength > 1:
		return fmt.Errorf("%w: strength %.3f outside [0, 1]", ErrInvalidOptions, o.Strength)
	case o.HOffset < -1 || o.HOffset > 1:
		return fmt.Errorf("%w: horizontal offset %.3f outside [-1, 1]", ErrInvalidOptions, o.HOffset)
	case o.VOffset < -1 || o.VOffset > 1:
		return fmt.Errorf("%w: vertical offset %.3f outside [-1, 1]", ErrInvalidOptions, o.VOffset)
	case o.FontSize <= 0:
		return fmt.Errorf("%w: font size %d must be positive", ErrInvalidOptions, o.FontSize)
	}

	switch o.Pattern {
	case "", PatternText, PatternQR:
		return nil
	default:
		return fmt.Errorf("%w: unknown pattern %q", ErrInvalidOptions, o.Pattern)
	}
}

// Result is the composited image together with where the overlay went.
type Result struct {
	Image  *image.RGBA
	Bounds image.Rectangle
	Alpha  uint8
}

// Embedder renders overlays. It is safe for concurrent use.
type Embedder struct {
	fonts *FontLoader
}

// NewEmbedder returns an Embedder using fonts for text lookup. A nil loader
// searches the platform font directories.
func NewEmbedder(fonts *FontLoader) *Embedder {
	if fonts == nil {
		fonts = NewFontLoader()
	}
	return &Embedder{fonts: fonts}
}

var defaultEmbedder struct {
	once sync.Once
	e    *Embedder
}

// Embed applies the default embedder to img.
func Embed(img image.Image, opts Options) (*Result, error) {
	defaultEmbedder.once.Do(func() {
		defaultEmbedder.e = NewEmbedder(nil)
	})
	return defaultEmbedder.e.Embed(img, opts)
}

// Embed draws opts.Message over a copy of img. The input is never modified
// and the output is fully opaque with the same bounds.
func (e *Embedder) Embed(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("overlay: nil image provided")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("overlay: invalid image dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	sh, err := e.shape(opts)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	defer sh.Close()

	size := sh.Size()
	at := Place(bounds, size, opts.HOffset, opts.VOffset)
	alpha := Alpha(opts.Strength)

	dst := toOpaqueRGBA(img)

	layer := system.GetImage(bounds)
	defer system.PutImage(layer)
	clear(layer.Pix)

	sh.Draw(layer, at, color.NRGBA{R: 255, G: 255, B: 255, A: alpha})
	draw.Draw(dst, bounds, layer, bounds.Min, draw.Over)

	return &Result{
		Image:  dst,
		Bounds: image.Rectangle{Min: at, Max: at.Add(size)},
		Alpha:  alpha,
	}, nil
}

func (e *Embedder) shape(opts Options) (shape, error) {
	if opts.Pattern == PatternQR {
		return newQRShape(opts.Message, opts.FontSize)
	}

	face, err := e.fonts.Face(opts.FontName, opts.FontSize)
	if err != nil {
		return nil, err
	}
	return newTextShape(face, opts.Message), nil
}

// toOpaqueRGBA copies src into a new buffer and drops its alpha channel, the
// way an RGBA to RGB conversion does. With alpha forced to 255 the
// non-premultiplied pixels are valid premultiplied RGBA as well.
func toOpaqueRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	n := image.NewNRGBA(bounds)

	if s, ok := src.(*image.NRGBA); ok {
		// Exact copy. draw rounds translucent pixels through premultiplication.
		w := 4 * bounds.Dx()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			i, j := s.PixOffset(bounds.Min.X, y), n.PixOffset(bounds.Min.X, y)
			copy(n.Pix[j:j+w], s.Pix[i:i+w])
		}
	} else {
		draw.Draw(n, bounds, src, bounds.Min, draw.Src)
	}

	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = 255
	}

	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}
