package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ivlev/overlaysteg/internal/source"
)

// runCLI executes the root command with args. Flag values live in package
// globals and survive between executions, so every flag is reset first.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeInput(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 160, 90))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 90, 100, 110, 255
	}
	if err := source.SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestEncodeCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cat.png")
	writeInput(t, in)

	if err := runCLI(t, "encode", "-i", in, "-m", "HELLO", "-s", "0.8"); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out := readPNG(t, filepath.Join(dir, "cat_encoded.png"))
	if got := out.Bounds().Size(); got != image.Pt(160, 90) {
		t.Errorf("encoded size = %v, want (160,90)", got)
	}
}

func TestEncodeCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cat.png")
	writeInput(t, in)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no message", []string{"encode", "-i", in}, "--message"},
		{"no input", []string{"encode", "-m", "HI"}, "input"},
		{"font too big", []string{"encode", "-i", in, "-m", "HI", "--font-size", "500"}, "font size"},
		{"missing file", []string{"encode", "-i", filepath.Join(dir, "nope.png"), "-m", "HI"}, "nope.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cat.png")
	writeInput(t, in)
	out := filepath.Join(dir, "revealed.png")

	if err := runCLI(t, "decode", "-i", in, "-o", out, "--intensity", "0.5"); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	img := readPNG(t, out)
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("revealed image is %T, want *image.Gray", img)
	}
	if got := img.Bounds().Size(); got != image.Pt(160, 90) {
		t.Errorf("revealed size = %v, want (160,90)", got)
	}
}

func TestBatchCommand(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	encoded := filepath.Join(root, "encoded")
	revealed := filepath.Join(root, "revealed")
	if err := os.Mkdir(in, 0755); err != nil {
		t.Fatal(err)
	}
	writeInput(t, filepath.Join(in, "a.png"))
	writeInput(t, filepath.Join(in, "b.png"))

	if err := runCLI(t, "batch", "-i", in, "-m", "HI", "-o", encoded, "--workers", "1"); err != nil {
		t.Fatalf("batch encode failed: %v", err)
	}
	for _, name := range []string{"a_encoded.png", "b_encoded.png"} {
		readPNG(t, filepath.Join(encoded, name))
	}

	if err := runCLI(t, "batch", "--mode", "decode", "-i", encoded, "-o", revealed, "--workers", "1"); err != nil {
		t.Fatalf("batch decode failed: %v", err)
	}
	for _, name := range []string{"a_encoded_revealed.png", "b_encoded_revealed.png"} {
		if img := readPNG(t, filepath.Join(revealed, name)); img.Bounds().Dx() != 160 {
			t.Errorf("%s width = %d, want 160", name, img.Bounds().Dx())
		}
	}

	if err := runCLI(t, "batch", "-i", in, "-o", encoded); err == nil {
		t.Error("batch encode without message: expected error")
	}
	if err := runCLI(t, "batch", "--mode", "scramble", "-i", in); err == nil {
		t.Error("unknown mode: expected error")
	}
}
