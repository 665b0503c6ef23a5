package analyzer

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ivlev/overlaysteg/internal/reveal"
)

// ContrastDetector finds overlay regions in a revealed image through Sobel
// edges, dilation and connected components.
type ContrastDetector struct {
	MinBlockArea  int     // pixels
	EdgeThreshold float64 // gradient magnitude
	DilateRadius  int
	DilateSteps   int
}

// NewContrastDetector returns a detector tuned for equalized text overlays.
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  200,
		EdgeThreshold: 30.0,
		DilateRadius:  2,
		DilateSteps:   2,
	}
}

// Detect returns candidate blocks sorted by area, largest first.
func (d *ContrastDetector) Detect(img image.Image) ([]Block, error) {
	if img == nil {
		return nil, fmt.Errorf("analyzer: nil image provided")
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		gray = reveal.Grayscale(img)
	}

	edges := sobel(gray, d.EdgeThreshold)
	for i := 0; i < d.DilateSteps; i++ {
		edges = dilate(edges, d.DilateRadius)
	}

	var blocks []Block
	total := float64(gray.Rect.Dx() * gray.Rect.Dy())
	for _, rect := range components(edges) {
		area := rect.Dx() * rect.Dy()
		if area < d.MinBlockArea {
			continue
		}

		b := Block{Rect: rect, Type: "overlay", Confidence: 0.7}
		// Regions spanning most of the frame are texture, not a message.
		if float64(area) > 0.5*total {
			b.Type = "noise"
			b.Confidence = 0.2
		}
		blocks = append(blocks, b)
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		ai := blocks[i].Rect.Dx() * blocks[i].Rect.Dy()
		aj := blocks[j].Rect.Dx() * blocks[j].Rect.Dy()
		return ai > aj
	})

	return blocks, nil
}

// LocalContrast is the standard deviation of luma inside rect. Empty
// intersections report 0.
func LocalContrast(img image.Image, rect image.Rectangle) float64 {
	gray, ok := img.(*image.Gray)
	if !ok {
		gray = reveal.Grayscale(img)
	}

	rect = rect.Intersect(gray.Rect)
	if rect.Empty() {
		return 0
	}

	var sum, sumSq float64
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			v := float64(gray.Pix[gray.PixOffset(x, y)])
			sum += v
			sumSq += v * v
		}
	}

	n := float64(rect.Dx() * rect.Dy())
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// sobel marks pixels whose gradient magnitude exceeds threshold. The
// one-pixel frame is left unmarked.
func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Rect
	edges := image.NewGray(b)

	at := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(x, y)])
	}

	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			if math.Hypot(gx, gy) > threshold {
				edges.Pix[edges.PixOffset(x, y)] = 255
			}
		}
	}
	return edges
}

// dilate grows marked pixels by radius in every direction, clipped to the
// image.
func dilate(src *image.Gray, radius int) *image.Gray {
	b := src.Rect
	out := image.NewGray(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.Pix[src.PixOffset(x, y)] == 0 {
				continue
			}
			r := image.Rect(x-radius, y-radius, x+radius+1, y+radius+1).Intersect(b)
			for yy := r.Min.Y; yy < r.Max.Y; yy++ {
				row := out.Pix[out.PixOffset(r.Min.X, yy):]
				for i := 0; i < r.Dx(); i++ {
					row[i] = 255
				}
			}
		}
	}
	return out
}

// components returns the bounding rectangle of every 4-connected group of
// marked pixels.
func components(img *image.Gray) []image.Rectangle {
	b := img.Rect
	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	var rects []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if visited[idx(x, y)] || img.Pix[img.PixOffset(x, y)] == 0 {
				continue
			}

			r := image.Rect(x, y, x+1, y+1)
			stack := []image.Point{{X: x, Y: y}}
			visited[idx(x, y)] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				r = r.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for _, n := range [4]image.Point{
					{X: p.X + 1, Y: p.Y}, {X: p.X - 1, Y: p.Y},
					{X: p.X, Y: p.Y + 1}, {X: p.X, Y: p.Y - 1},
				} {
					if !n.In(b) || visited[idx(n.X, n.Y)] || img.Pix[img.PixOffset(n.X, n.Y)] == 0 {
						continue
					}
					visited[idx(n.X, n.Y)] = true
					stack = append(stack, n)
				}
			}
			rects = append(rects, r)
		}
	}
	return rects
}
