package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
)

// EdgeMap is a binary Canny edge map with constant-time edge counting over
// any axis-aligned rectangle.
type EdgeMap struct {
	width, height int
	set           []bool
	// counts is a (width+1)x(height+1) summed-area table of edge pixels.
	counts []int32
}

// Width returns the map width in pixels.
func (e *EdgeMap) Width() int { return e.width }

// Height returns the map height in pixels.
func (e *EdgeMap) Height() int { return e.height }

// At reports whether (x, y) is an edge pixel. Out-of-range points are not.
func (e *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= e.width || y >= e.height {
		return false
	}
	return e.set[y*e.width+x]
}

// Count returns the number of edge pixels inside r, clipped to the map.
func (e *EdgeMap) Count(r image.Rectangle) int {
	r = r.Intersect(image.Rect(0, 0, e.width, e.height))
	if r.Empty() {
		return 0
	}
	stride := e.width + 1
	a := e.counts[r.Min.Y*stride+r.Min.X]
	b := e.counts[r.Min.Y*stride+r.Max.X]
	c := e.counts[r.Max.Y*stride+r.Min.X]
	d := e.counts[r.Max.Y*stride+r.Max.X]
	return int(d - b - c + a)
}

// Density returns the fraction of edge pixels inside r.
func (e *EdgeMap) Density(r image.Rectangle) float64 {
	r = r.Intersect(image.Rect(0, 0, e.width, e.height))
	area := r.Dx() * r.Dy()
	if area == 0 {
		return 0
	}
	return float64(e.Count(r)) / float64(area)
}

// RowCounts returns the number of edge pixels on each row of r, top to bottom.
func (e *EdgeMap) RowCounts(r image.Rectangle) []int {
	r = r.Intersect(image.Rect(0, 0, e.width, e.height))
	rows := make([]int, r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		rows[y-r.Min.Y] = e.Count(image.Rect(r.Min.X, y, r.Max.X, y+1))
	}
	return rows
}

// Image renders the map as a grayscale image with edges in white.
func (e *EdgeMap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, e.width, e.height))
	for i, on := range e.set {
		if on {
			img.Pix[i/e.width*img.Stride+i%e.width] = 255
		}
	}
	return img
}

// Canny runs Canny edge detection over a grayscale image.
//
// Thresholds are on the 0-255 gradient scale; typical values are 50 and 150.
// The steps are a 5x5 Gaussian blur, Sobel gradients, non-maximum suppression
// along the gradient direction, and single-pass hysteresis where weak pixels
// survive only next to a strong one.
func Canny(gray *image.Gray, thresholdLow, thresholdHigh int) *EdgeMap {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	src := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			src[y*width+x] = float64(row[x]) / 255.0
		}
	}

	blurred := gaussianBlur(src, width, height)

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := blurred[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1, n2 = magnitude[i-1], magnitude[i+1]
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1, n2 = magnitude[i-width+1], magnitude[i+width-1]
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1, n2 = magnitude[i-width], magnitude[i+width]
			default:
				n1, n2 = magnitude[i-width-1], magnitude[i+width+1]
			}
			if magnitude[i] >= n1 && magnitude[i] >= n2 {
				suppressed[i] = magnitude[i]
			}
		}
	}

	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	e := &EdgeMap{
		width:  width,
		height: height,
		set:    make([]bool, width*height),
		counts: make([]int32, (width+1)*(height+1)),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y*width+x]
			if val >= highThresh {
				e.set[y*width+x] = true
				continue
			}
			if val < lowThresh {
				continue
			}
		neighbors:
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					if suppressed[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)] >= highThresh {
						e.set[y*width+x] = true
						break neighbors
					}
				}
			}
		}
	}

	stride := width + 1
	for y := 0; y < height; y++ {
		var rowSum int32
		for x := 0; x < width; x++ {
			if e.set[y*width+x] {
				rowSum++
			}
			e.counts[(y+1)*stride+x+1] = e.counts[y*stride+x+1] + rowSum
		}
	}
	return e
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
	gaussianKernel = [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
)

// gaussianBlur applies the 5x5 kernel above (sum 273) with replicated borders.
func gaussianBlur(img []float64, width, height int) []float64 {
	result := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += img[clamp(y+ky, 0, height-1)*width+clamp(x+kx, 0, width-1)] * gaussianKernel[ky+2][kx+2]
				}
			}
			result[y*width+x] = sum / 273.0
		}
	}
	return result
}

// clamp constrains val to [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// EdgeImageResult is an edge map encoded for transport.
type EdgeImageResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	EdgePixels  int     `json:"edge_pixels"`
	Density     float64 `json:"density"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
}

// EdgeDetect computes the Canny edge map of img and returns it as a base64
// PNG with white edges on black. It is the diagnostic view of what the
// candidate generator sees.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeImageResult, error) {
	e := Canny(ToGray(img), thresholdLow, thresholdHigh)

	var buf bytes.Buffer
	if err := png.Encode(&buf, e.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	full := image.Rect(0, 0, e.width, e.height)
	return &EdgeImageResult{
		Width:       e.width,
		Height:      e.height,
		EdgePixels:  e.Count(full),
		Density:     e.Density(full),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
