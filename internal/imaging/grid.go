package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Grid returns a copy of the frame with a one-pixel coordinate grid every
// spacing pixels, blended over the image at half opacity. When labeled is
// true each intersection carries its "x,y" coordinates. It is the visual aid
// for picking the point passed to template capture.
func (a *Annotator) Grid(frame *Frame, spacing int, labeled bool) (*image.NRGBA, error) {
	if spacing < 8 {
		return nil, fmt.Errorf("grid spacing must be at least 8, got %d", spacing)
	}
	out := imaging.Clone(frame.Color())
	b := out.Rect

	line := a.marker
	for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			blend(out, x, y, line)
		}
	}
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x-b.Min.X)%spacing != 0 {
				blend(out, x, y, line)
			}
		}
	}

	if labeled {
		for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
			for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
				a.text(out, x+3, y+13, fmt.Sprintf("%d,%d", x, y))
			}
		}
	}
	return out, nil
}

// blend mixes c into the pixel at (x, y) with equal weight.
func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	p := img.NRGBAAt(x, y)
	img.SetNRGBA(x, y, color.NRGBA{
		R: uint8((uint16(p.R) + uint16(c.R)) / 2),
		G: uint8((uint16(p.G) + uint16(c.G)) / 2),
		B: uint8((uint16(p.B) + uint16(c.B)) / 2),
		A: 255,
	})
}
