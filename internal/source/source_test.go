package source

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 128, B: 0, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG(%s): %v", path, err)
	}
}

func TestDecodeBytes(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, checker(7, 5)); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, format, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds().Dx() != 7 || img.Bounds().Dy() != 5 {
		t.Errorf("bounds = %v, want 7x5", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 128 || b>>8 != 0 {
		t.Errorf("pixel (0,0) = %d,%d,%d; want 255,128,0", r>>8, g>>8, b>>8)
	}
}

func TestDecodeBytesErrors(t *testing.T) {
	if _, _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("nil data: error = %v, want ErrEmptyData", err)
	}
	if _, _, err := DecodeBytes([]byte("definitely not an image")); err == nil {
		t.Error("garbage data: expected error")
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), checker(4, 4))
	writePNG(t, filepath.Join(dir, "a.png"), checker(6, 3))
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0644)
	os.Mkdir(filepath.Join(dir, "nested.png"), 0755)

	src, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 2 {
		t.Fatalf("PageCount = %d, want 2", src.PageCount())
	}
	if src.PageName(0) != "a" || src.PageName(1) != "b" {
		t.Errorf("names = %q, %q; want a, b", src.PageName(0), src.PageName(1))
	}

	img, err := src.RenderPage(0, DefaultDPI)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 3 {
		t.Errorf("page 0 bounds = %v, want 6x3", img.Bounds())
	}

	if _, err := src.RenderPage(2, DefaultDPI); err == nil {
		t.Error("RenderPage(2): expected out of range error")
	}
}

func TestImageSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, path, checker(3, 3))

	src, err := NewImageSource(path)
	if err != nil {
		t.Fatalf("NewImageSource failed: %v", err)
	}
	if src.PageCount() != 1 || src.PageName(0) != "photo" || src.PagePath(0) != path {
		t.Errorf("got %d pages, name %q, path %q", src.PageCount(), src.PageName(0), src.PagePath(0))
	}

	if _, err := NewImageSource(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestPreview(t *testing.T) {
	img := checker(400, 200)

	tests := []struct {
		name     string
		maxWidth int
		want     image.Point
	}{
		{"shrinks", 100, image.Pt(100, 50)},
		{"already small", 800, image.Pt(400, 200)},
		{"disabled", 0, image.Pt(400, 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(img, tt.maxWidth).Bounds().Size(); got != tt.want {
				t.Errorf("Preview size = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreviewGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 300, 60))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	small := PreviewGray(img, 100)
	if got := small.Bounds().Size(); got != image.Pt(100, 20) {
		t.Fatalf("PreviewGray size = %v, want (100,20)", got)
	}
	if v := small.GrayAt(50, 10).Y; v < 127 || v > 129 {
		t.Errorf("flat gray resampled to %d, want about 128", v)
	}
	if PreviewGray(img, 0) != img || PreviewGray(img, 300) != img {
		t.Error("narrow enough image was copied")
	}
}
