package reveal_test

import (
	"image"
	"testing"

	"github.com/ivlev/overlaysteg/internal/analyzer"
	"github.com/ivlev/overlaysteg/internal/overlay"
	"github.com/ivlev/overlaysteg/internal/reveal"
)

func flat(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

func embed(t *testing.T, img image.Image, strength float64) *overlay.Result {
	t.Helper()
	emb := overlay.NewEmbedder(&overlay.FontLoader{})
	res, err := emb.Embed(img, overlay.Options{Message: "HELLO", Strength: strength, FontSize: 24})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	return res
}

// White text over a white image composites to white, so there is nothing
// for the reveal to find.
func TestRoundTripWhiteStaysFlat(t *testing.T) {
	res := embed(t, flat(200, 200, 255), 0.5)

	out, err := reveal.Reveal(res.Image, 1)
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	if c := analyzer.LocalContrast(out, res.Bounds); c != 0 {
		t.Errorf("contrast inside %v = %.2f, want 0", res.Bounds, c)
	}
}

func TestRoundTripGrayShowsMessage(t *testing.T) {
	plain := flat(200, 200, 200)
	res := embed(t, plain, 0.5)

	before, err := reveal.Reveal(plain, 1)
	if err != nil {
		t.Fatalf("Reveal(plain) failed: %v", err)
	}
	after, err := reveal.Reveal(res.Image, 1)
	if err != nil {
		t.Fatalf("Reveal(encoded) failed: %v", err)
	}

	cb := analyzer.LocalContrast(before, res.Bounds)
	ca := analyzer.LocalContrast(after, res.Bounds)
	t.Logf("contrast inside %v: plain %.2f, encoded %.2f", res.Bounds, cb, ca)

	if cb != 0 {
		t.Errorf("plain image contrast = %.2f, want 0", cb)
	}
	if ca < 50 {
		t.Errorf("encoded contrast %.2f too low to read the message", ca)
	}

	blocks, err := analyzer.NewContrastDetector().Detect(after)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	found := false
	for _, b := range blocks {
		t.Logf("block %v (%s, %.2f)", b.Rect, b.Type, b.Confidence)
		if b.Type == "overlay" && b.Rect.Overlaps(res.Bounds) {
			found = true
		}
	}
	if !found {
		t.Errorf("no overlay block overlaps %v", res.Bounds)
	}
}

func TestRevealMoreIntensityMoreContrast(t *testing.T) {
	res := embed(t, flat(160, 120, 180), 0.3)

	prev := -1.0
	for _, in := range []float64{0, 0.5, 1} {
		out, err := reveal.Reveal(res.Image, in)
		if err != nil {
			t.Fatalf("Reveal(%.1f) failed: %v", in, err)
		}
		c := analyzer.LocalContrast(out, res.Bounds)
		t.Logf("intensity %.1f: contrast %.2f", in, c)
		if c <= prev {
			t.Errorf("intensity %.1f: contrast %.2f not above %.2f", in, c, prev)
		}
		prev = c
	}
}
