package analyzer

import "image"

// Block is a region where a revealed overlay likely sits.
type Block struct {
	Rect       image.Rectangle
	Type       string  // "overlay", "noise"
	Confidence float64 // 0.0-1.0
}

// Detector finds candidate overlay regions in an image.
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}
