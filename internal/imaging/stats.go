package imaging

import (
	"image"
	"math"
)

// RegionStats holds first and second order statistics of a pixel region.
type RegionStats struct {
	Pixels   int     `json:"pixels"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Std      float64 `json:"std"`
}

// Integral is a pair of summed-area tables (values and squared values) over a
// grayscale image. Any rectangle's mean and population variance cost four
// lookups each.
type Integral struct {
	width, height int
	sum           []uint64
	sq            []uint64
}

// NewIntegral builds the tables for gray. Coordinates are relative to the
// image's Min point.
func NewIntegral(gray *image.Gray) *Integral {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	in := &Integral{
		width:  w,
		height: h,
		sum:    make([]uint64, (w+1)*(h+1)),
		sq:     make([]uint64, (w+1)*(h+1)),
	}
	stride := w + 1
	for y := 0; y < h; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		var rs, rq uint64
		for x := 0; x < w; x++ {
			v := uint64(row[x])
			rs += v
			rq += v * v
			in.sum[(y+1)*stride+x+1] = in.sum[y*stride+x+1] + rs
			in.sq[(y+1)*stride+x+1] = in.sq[y*stride+x+1] + rq
		}
	}
	return in
}

// Stats returns the statistics of r clipped to the table bounds. An empty
// region yields zero stats.
func (in *Integral) Stats(r image.Rectangle) RegionStats {
	r = r.Intersect(image.Rect(0, 0, in.width, in.height))
	n := r.Dx() * r.Dy()
	if n == 0 {
		return RegionStats{}
	}
	s := rectSum(in.sum, in.width+1, r)
	q := rectSum(in.sq, in.width+1, r)

	mean := float64(s) / float64(n)
	variance := float64(q)/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return RegionStats{
		Pixels:   n,
		Mean:     mean,
		Variance: variance,
		Std:      math.Sqrt(variance),
	}
}

func rectSum(table []uint64, stride int, r image.Rectangle) uint64 {
	return table[r.Max.Y*stride+r.Max.X] + table[r.Min.Y*stride+r.Min.X] -
		table[r.Min.Y*stride+r.Max.X] - table[r.Max.Y*stride+r.Min.X]
}

// GrayStats computes statistics of every pixel in gray directly, for
// one-off regions where building a table would not pay off.
func GrayStats(gray *image.Gray) RegionStats {
	b := gray.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return RegionStats{}
	}
	var s, q uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			v := uint64(row[x])
			s += v
			q += v * v
		}
	}
	mean := float64(s) / float64(n)
	variance := float64(q)/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return RegionStats{Pixels: n, Mean: mean, Variance: variance, Std: math.Sqrt(variance)}
}
