package detection

import (
	"image"
	"sort"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive).
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Shape is the bounding box of one connected edge contour.
type Shape struct {
	Bounds Bounds `json:"bounds"`
	Center Point  `json:"center"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	// Area is Width x Height of the bounding box, not the contour length.
	Area int `json:"area"`

	// Aspect is Width / Height.
	Aspect float64 `json:"aspect"`

	// Pixels is the number of edge pixels in the contour.
	Pixels int `json:"pixels"`
}

// ShapeOptions filters contour bounding boxes to plausible icon outlines.
type ShapeOptions struct {
	MinSize   int
	MaxSize   int
	MinAspect float64
	MaxAspect float64
}

// Mask is a binary pixel grid such as a Canny edge map.
type Mask interface {
	Width() int
	Height() int
	At(x, y int) bool
}

// minContourPixels drops specks of edge noise.
const minContourPixels = 10

// FindIconShapes groups edge pixels into 8-connected contours and returns the
// bounding boxes whose sides lie in [MinSize, MaxSize] and whose aspect ratio
// lies in [MinAspect, MaxAspect].
//
// Results are sorted by bounding box area, largest first; equal areas are
// ordered top-to-bottom, then left-to-right.
//
// Contours are outer and inner boundaries alike, so a hollow square yields
// one shape per closed outline.
func FindIconShapes(edges Mask, opts ShapeOptions) []Shape {
	width, height := edges.Width(), edges.Height()
	contours := findContours(edges.At, width, height, minContourPixels)

	shapes := make([]Shape, 0)
	for _, contour := range contours {
		b := contourBounds(contour)
		w := b.X2 - b.X1
		h := b.Y2 - b.Y1
		if w < opts.MinSize || w > opts.MaxSize || h < opts.MinSize || h > opts.MaxSize {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < opts.MinAspect || aspect > opts.MaxAspect {
			continue
		}
		shapes = append(shapes, Shape{
			Bounds: b,
			Center: Point{X: b.X1 + w/2, Y: b.Y1 + h/2},
			Width:  w,
			Height: h,
			Area:   w * h,
			Aspect: aspect,
			Pixels: len(contour),
		})
	}

	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].Area != shapes[j].Area {
			return shapes[i].Area > shapes[j].Area
		}
		if shapes[i].Center.Y != shapes[j].Center.Y {
			return shapes[i].Center.Y < shapes[j].Center.Y
		}
		return shapes[i].Center.X < shapes[j].Center.X
	})
	return shapes
}

// findContours labels 8-connected components of pixels for which set
// reports true, scanning in row-major order. Components smaller than
// minPixels are dropped.
func findContours(set func(x, y int) bool, width, height, minPixels int) [][]Point {
	visited := make([]bool, width*height)
	contours := make([][]Point, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !set(x, y) {
				continue
			}
			contour := make([]Point, 0)
			floodFill(set, visited, x, y, width, height, &contour)
			if len(contour) >= minPixels {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// floodFill collects the 8-connected component containing (startX, startY)
// with an explicit stack.
func floodFill(set func(x, y int) bool, visited []bool, startX, startY, width, height int, contour *[]Point) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y*width+p.X] || !set(p.X, p.Y) {
			continue
		}

		visited[p.Y*width+p.X] = true
		*contour = append(*contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if (dx == 0 && dy == 0) || nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if !visited[ny*width+nx] {
					stack = append(stack, Point{X: nx, Y: ny})
				}
			}
		}
	}
}

func contourBounds(contour []Point) Bounds {
	b := Bounds{X1: contour[0].X, Y1: contour[0].Y, X2: contour[0].X + 1, Y2: contour[0].Y + 1}
	for _, p := range contour[1:] {
		b.X1 = minInt(b.X1, p.X)
		b.Y1 = minInt(b.Y1, p.Y)
		b.X2 = maxInt(b.X2, p.X+1)
		b.Y2 = maxInt(b.Y2, p.Y+1)
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
