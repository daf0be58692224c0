package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// ITU-R BT.601 luma weights.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ToGray converts img to an 8-bit grayscale image anchored at (0,0) using
// BT.601 luma. Grayscale input is copied without conversion.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return rebaseGray(g)
	}
	// bild writes the luma into R, G and B of an RGBA image.
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	b := rgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

// Downscale shrinks gray by an integer factor with a box filter, so each
// output pixel is the mean of a factor x factor block.
func Downscale(gray *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return rebaseGray(gray)
	}
	b := gray.Bounds()
	w, h := b.Dx()/factor, b.Dy()/factor
	if w == 0 || h == 0 {
		return image.NewGray(image.Rect(0, 0, w, h))
	}
	small := imaging.Resize(gray, w, h, imaging.Box)

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = small.Pix[y*small.Stride+x*4]
		}
	}
	return out
}

func rebaseGray(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}
