package reveal

import "image"

// Histogram counts pixels per gray level.
func Histogram(g *image.Gray) [256]int {
	var h [256]int
	for y := 0; y < g.Rect.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+g.Rect.Dx()]
		for _, v := range row {
			h[v]++
		}
	}
	return h
}

// EqualizeLUT builds the lookup table that flattens histogram h. The
// brightest populated level is left out of the step so it maps to the top of
// the range. Histograms with fewer than two populated levels yield the
// identity table.
func EqualizeLUT(h [256]int) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8(i)
	}

	total, last, levels := 0, 0, 0
	for _, c := range h {
		if c == 0 {
			continue
		}
		total += c
		last = c
		levels++
	}
	if levels <= 1 {
		return lut
	}

	step := (total - last) / 256
	if step == 0 {
		return lut
	}

	n := step / 2
	for i := range lut {
		v := n / step
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
		n += h[i]
	}
	return lut
}

// Equalize returns the histogram-equalized copy of g.
func Equalize(g *image.Gray) *image.Gray {
	lut := EqualizeLUT(Histogram(g))

	out := image.NewGray(g.Rect)
	for y := 0; y < g.Rect.Dy(); y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+g.Rect.Dx()]
		dst := out.Pix[y*out.Stride : y*out.Stride+out.Rect.Dx()]
		for x, v := range src {
			dst[x] = lut[v]
		}
	}
	return out
}
