package main

import (
	"path/filepath"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		explicit, input, name, suffix string
		want                          string
	}{
		{"", filepath.Join("in", "cat.jpg"), "cat", "encoded", filepath.Join("in", "cat_encoded.png")},
		{"", filepath.Join("docs", "a.pdf"), "a_p2", "revealed", filepath.Join("docs", "a_p2_revealed.png")},
		{"", "photo.webp", "", "encoded", "photo_encoded.png"},
		{"out.png", "photo.webp", "photo", "encoded", "out.png"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.explicit, tt.input, tt.name, tt.suffix); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.explicit, tt.input, tt.name, got, tt.want)
		}
	}
}
