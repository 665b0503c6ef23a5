package overlay

import "image"

// Place returns the top-left corner for content of the given size inside
// bounds. Offsets run from -1 (left/top) through 0 (centered) to 1
// (right/bottom). Content larger than bounds is pinned to the top-left edge.
func Place(bounds image.Rectangle, size image.Point, hOffset, vOffset float64) image.Point {
	x := placeAxis(bounds.Dx(), size.X, hOffset)
	y := placeAxis(bounds.Dy(), size.Y, vOffset)
	return bounds.Min.Add(image.Pt(x, y))
}

func placeAxis(dim, size int, offset float64) int {
	half := floorDiv(dim-size, 2)
	pos := half + int(offset*float64(half))

	if pos > dim-size {
		pos = dim - size
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// floorDiv rounds toward negative infinity, unlike Go's / operator.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Alpha maps strength in [0, 1] to the overlay's 8-bit alpha. Full strength
// is capped at half opacity (127).
func Alpha(strength float64) uint8 {
	return uint8(255 * strength * 0.5)
}
