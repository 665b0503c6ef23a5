package reveal

import (
	"image"

	"golang.org/x/image/draw"
)

// Luma returns the ITU-R 601-2 luma of an 8-bit RGB triple, computed in
// 16.16 fixed point with rounding.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Grayscale converts img to a single luma channel. Alpha is ignored, so
// translucent pixels keep their color rather than darkening toward black.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()

	n, ok := img.(*image.NRGBA)
	if !ok {
		n = image.NewNRGBA(bounds)
		draw.Draw(n, bounds, img, bounds.Min, draw.Src)
	}

	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := n.Pix[n.PixOffset(bounds.Min.X, y):]
		dst := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = Luma(src[4*x], src[4*x+1], src[4*x+2])
		}
	}
	return gray
}
