package reveal

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func grayRamp(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Clustered around mid gray so equalization has work to do.
			g.SetGray(x, y, color.Gray{Y: uint8(100 + (x+y)%40)})
		}
	}
	return g
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"red", 255, 0, 0, 76},
		{"green", 0, 255, 0, 150},
		{"blue", 0, 0, 255, 29},
		{"gray", 200, 200, 200, 200},
	}
	for _, tt := range tests {
		if got := Luma(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("%s: Luma = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestGrayscaleIgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 128})

	g := Grayscale(img)
	if got := g.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("transparent white = %d, want 255", got)
	}
	if got := g.GrayAt(1, 0).Y; got != 76 {
		t.Errorf("half-transparent red = %d, want 76", got)
	}
}

func TestEqualizeLUT(t *testing.T) {
	var h [256]int
	h[10] = 256
	h[20] = 256

	lut := EqualizeLUT(h)
	if lut[10] != 0 || lut[20] != 255 {
		t.Errorf("lut[10], lut[20] = %d, %d; want 0, 255", lut[10], lut[20])
	}
}

func TestEqualizeDegenerate(t *testing.T) {
	tests := []struct {
		name string
		fill func(h *[256]int)
	}{
		{"empty", func(h *[256]int) {}},
		{"single level", func(h *[256]int) { h[200] = 10000 }},
		{"too few pixels", func(h *[256]int) { h[1] = 3; h[2] = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h [256]int
			tt.fill(&h)
			lut := EqualizeLUT(h)
			for i, v := range lut {
				if int(v) != i {
					t.Fatalf("lut[%d] = %d, want identity", i, v)
				}
			}
		})
	}
}

func TestEqualizeSpreadsLevels(t *testing.T) {
	g := grayRamp(64, 64)
	eq := Equalize(g)

	lo, hi := 255, 0
	for _, v := range eq.Pix {
		lo = min(lo, int(v))
		hi = max(hi, int(v))
	}
	t.Logf("input range 100..139, equalized range %d..%d", lo, hi)
	if lo > 10 || hi < 240 {
		t.Errorf("equalized range %d..%d not stretched", lo, hi)
	}
}

func TestRevealIntensity(t *testing.T) {
	g := grayRamp(32, 32)
	gray := Grayscale(g)
	eq := Equalize(gray)

	zero, err := Reveal(g, 0)
	if err != nil {
		t.Fatalf("Reveal(0): %v", err)
	}
	full, err := Reveal(g, 1)
	if err != nil {
		t.Fatalf("Reveal(1): %v", err)
	}
	half, err := Reveal(g, 0.5)
	if err != nil {
		t.Fatalf("Reveal(0.5): %v", err)
	}

	for i := range gray.Pix {
		if zero.Pix[i] != gray.Pix[i] {
			t.Fatalf("intensity 0 differs from grayscale at %d", i)
		}
		if full.Pix[i] != eq.Pix[i] {
			t.Fatalf("intensity 1 differs from equalized at %d", i)
		}
		if want := uint8((int(gray.Pix[i]) + int(eq.Pix[i])) / 2); half.Pix[i] != want {
			t.Fatalf("intensity 0.5 at %d = %d, want %d", i, half.Pix[i], want)
		}
	}

	if full.Bounds() != g.Bounds() {
		t.Errorf("bounds = %v, want %v", full.Bounds(), g.Bounds())
	}
}

func TestRevealInvalid(t *testing.T) {
	g := grayRamp(4, 4)
	for _, in := range []float64{-0.01, 1.5} {
		if _, err := Reveal(g, in); !errors.Is(err, ErrInvalidIntensity) {
			t.Errorf("Reveal(%.2f) error = %v, want ErrInvalidIntensity", in, err)
		}
	}
	if _, err := Reveal(nil, 0.5); err == nil {
		t.Error("nil image: expected error")
	}
	if _, err := Reveal(image.NewGray(image.Rect(0, 0, 3, 0)), 0.5); err == nil {
		t.Error("empty image: expected error")
	}
}
