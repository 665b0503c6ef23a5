package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Pattern names accepted by Options.Pattern.
const (
	PatternText = "text"
	PatternQR   = "qr"
)

// shape is something drawable on the overlay layer. Size reports the exact
// footprint; Draw paints it with its top-left corner at the given point.
// Close releases whatever the shape holds once drawing is done.
type shape interface {
	Size() image.Point
	Draw(dst draw.Image, at image.Point, c color.Color)
	Close() error
}

type textShape struct {
	face   font.Face
	text   string
	bounds fixed.Rectangle26_6
}

func newTextShape(face font.Face, text string) *textShape {
	b, _ := font.BoundString(face, text)
	return &textShape{face: face, text: text, bounds: b}
}

func (s *textShape) Size() image.Point {
	if s.text == "" {
		return image.Point{}
	}
	return image.Pt(
		s.bounds.Max.X.Ceil()-s.bounds.Min.X.Floor(),
		s.bounds.Max.Y.Ceil()-s.bounds.Min.Y.Floor(),
	)
}

func (s *textShape) Draw(dst draw.Image, at image.Point, c color.Color) {
	if s.text == "" {
		return
	}
	// Shift the pen so the ink box, not the baseline origin, lands on at.
	dot := fixed.P(at.X-s.bounds.Min.X.Floor(), at.Y-s.bounds.Min.Y.Floor())
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  dot,
	}
	d.DrawString(s.text)
}

func (s *textShape) Close() error {
	return s.face.Close()
}

type qrShape struct {
	bitmap [][]bool
	module int
}

func newQRShape(text string, fontSize int) (*qrShape, error) {
	if text == "" {
		return nil, fmt.Errorf("encode qr: empty message")
	}
	code, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	module := (fontSize + 7) / 8
	if module < 1 {
		module = 1
	}
	return &qrShape{bitmap: trimQuietZone(code.Bitmap()), module: module}, nil
}

// trimQuietZone drops the white border go-qrcode adds around the symbol.
func trimQuietZone(bitmap [][]bool) [][]bool {
	const border = 4
	if len(bitmap) <= 2*border {
		return bitmap
	}
	inner := bitmap[border : len(bitmap)-border]
	out := make([][]bool, len(inner))
	for i, row := range inner {
		out[i] = row[border : len(row)-border]
	}
	return out
}

func (s *qrShape) Size() image.Point {
	side := len(s.bitmap) * s.module
	return image.Pt(side, side)
}

func (s *qrShape) Close() error { return nil }

func (s *qrShape) Draw(dst draw.Image, at image.Point, c color.Color) {
	src := image.NewUniform(c)
	for y, row := range s.bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			r := image.Rect(0, 0, s.module, s.module).
				Add(at).
				Add(image.Pt(x*s.module, y*s.module))
			draw.Draw(dst, r, src, image.Point{}, draw.Over)
		}
	}
}
