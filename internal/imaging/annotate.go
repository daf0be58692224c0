package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotator draws detection markers onto copies of frames.
type Annotator struct {
	marker     color.NRGBA
	background color.NRGBA

	Radius    int
	Thickness int
	DotRadius int
}

// NewAnnotator parses a "#RRGGBB" marker color. The label background is
// black for light markers and white for dark ones.
func NewAnnotator(hex string, radius, thickness, dotRadius int) (*Annotator, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid marker color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()

	bg := color.NRGBA{0, 0, 0, 180}
	if l, _, _ := c.Lab(); l < 0.5 {
		bg = color.NRGBA{255, 255, 255, 180}
	}

	return &Annotator{
		marker:     color.NRGBA{r, g, b, 255},
		background: bg,
		Radius:     radius,
		Thickness:  thickness,
		DotRadius:  dotRadius,
	}, nil
}

// Marker returns the parsed marker color.
func (a *Annotator) Marker() color.NRGBA { return a.marker }

// Mark returns a copy of the frame with a ring and a filled dot at pt, the
// caption to the right of the ring and the coordinates below it.
func (a *Annotator) Mark(frame *Frame, pt image.Point, caption string) *image.NRGBA {
	out := imaging.Clone(frame.Color())

	a.ring(out, pt, a.Radius, a.Thickness)
	a.disc(out, pt, a.DotRadius)

	if caption != "" {
		a.text(out, pt.X+a.Radius+10, pt.Y-10, caption)
	}
	a.text(out, pt.X+a.Radius+10, pt.Y+20, fmt.Sprintf("(%d, %d)", pt.X, pt.Y))
	return out
}

// Boxes returns a copy of the frame with a one-pixel outline around each
// rectangle and its index drawn at the top-left corner.
func (a *Annotator) Boxes(frame *Frame, rects []image.Rectangle) *image.NRGBA {
	out := imaging.Clone(frame.Color())
	b := out.Bounds()

	for i, r := range rects {
		r = r.Intersect(b)
		if r.Empty() {
			continue
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			out.SetNRGBA(x, r.Min.Y, a.marker)
			out.SetNRGBA(x, r.Max.Y-1, a.marker)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			out.SetNRGBA(r.Min.X, y, a.marker)
			out.SetNRGBA(r.Max.X-1, y, a.marker)
		}
		a.text(out, r.Min.X+2, r.Min.Y+2+basicfont.Face7x13.Ascent, fmt.Sprintf("%d", i+1))
	}
	return out
}

// ring draws the annulus radius-thickness/2 <= d <= radius+thickness/2.
func (a *Annotator) ring(img *image.NRGBA, c image.Point, radius, thickness int) {
	if radius <= 0 {
		return
	}
	half := float64(thickness) / 2
	inner := float64(radius) - half
	outer := float64(radius) + half
	reach := radius + thickness

	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			d2 := float64(dx*dx + dy*dy)
			if d2 >= inner*inner && d2 <= outer*outer {
				setIn(img, c.X+dx, c.Y+dy, a.marker)
			}
		}
	}
}

func (a *Annotator) disc(img *image.NRGBA, c image.Point, radius int) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setIn(img, c.X+dx, c.Y+dy, a.marker)
			}
		}
	}
}

// text draws s with its baseline at (x, y) over a translucent box.
func (a *Annotator) text(img *image.NRGBA, x, y int, s string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(a.marker),
		Face: face,
		Dot:  fixed.P(x, y),
	}

	width := d.MeasureString(s).Ceil()
	box := image.Rect(x-2, y-face.Ascent-2, x+width+2, y+face.Descent+2)
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(a.background), image.Point{}, draw.Over)

	d.DrawString(s)
}

func setIn(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetNRGBA(x, y, c)
	}
}

// SaveAnnotated writes an annotated image to path, creating the parent
// directory. The format follows the file extension.
func SaveAnnotated(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create annotation directory: %w", err)
	}
	return Save(img, path)
}
