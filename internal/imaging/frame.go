package imaging

import (
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// Frame is one captured screen image together with the views derived from it.
//
// A Frame is created once per detection attempt and is never mutated by the
// detection code. The grayscale view is computed eagerly; edge maps and
// integral images are computed on first use and cached for the lifetime of
// the Frame. All methods are safe for concurrent use.
type Frame struct {
	color *image.NRGBA
	gray  *image.Gray

	statsOnce sync.Once
	integral  *Integral

	mu    sync.Mutex
	edges map[[2]int]*EdgeMap
}

// NewFrame normalizes img into a Frame whose bounds start at (0,0).
//
// The source image is copied, so later changes to img do not affect the Frame.
func NewFrame(img image.Image) *Frame {
	color := imaging.Clone(img)
	gray := ToGray(color)
	return &Frame{
		color: color,
		gray:  gray,
		edges: make(map[[2]int]*EdgeMap),
	}
}

// NewFrameFromGray builds a Frame from a grayscale image without the
// luminance conversion, so pixel values are preserved exactly.
func NewFrameFromGray(g *image.Gray) *Frame {
	b := g.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(gray.Pix[y*gray.Stride:y*gray.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return &Frame{
		color: imaging.Clone(gray),
		gray:  gray,
		edges: make(map[[2]int]*EdgeMap),
	}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.gray.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.gray.Rect.Dy() }

// Bounds returns the frame rectangle, always anchored at (0,0).
func (f *Frame) Bounds() image.Rectangle { return f.gray.Rect }

// Color returns the color view. Callers must not modify it.
func (f *Frame) Color() *image.NRGBA { return f.color }

// Gray returns the grayscale view. Callers must not modify it.
func (f *Frame) Gray() *image.Gray { return f.gray }

// GrayRegion returns the grayscale pixels inside r, clipped to the frame.
// The returned image shares memory with the frame and keeps r's coordinates.
func (f *Frame) GrayRegion(r image.Rectangle) *image.Gray {
	return f.gray.SubImage(r.Intersect(f.gray.Rect)).(*image.Gray)
}

// Stats returns mean and variance of the grayscale pixels inside r.
func (f *Frame) Stats(r image.Rectangle) RegionStats {
	f.statsOnce.Do(func() {
		f.integral = NewIntegral(f.gray)
	})
	return f.integral.Stats(r)
}

// EdgeMap returns the Canny edge map for the given thresholds, computing it
// on first request.
func (f *Frame) EdgeMap(low, high int) *EdgeMap {
	key := [2]int{low, high}

	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.edges[key]; ok {
		return e
	}
	e := Canny(f.gray, low, high)
	f.edges[key] = e
	return e
}
