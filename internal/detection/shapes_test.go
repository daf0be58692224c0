package detection

import (
	"image"
	"testing"
)

// gridMask is a settable binary mask for contour tests.
type gridMask struct {
	w, h int
	on   []bool
}

func newGridMask(w, h int) *gridMask {
	return &gridMask{w: w, h: h, on: make([]bool, w*h)}
}

func (m *gridMask) Width() int  { return m.w }
func (m *gridMask) Height() int { return m.h }
func (m *gridMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.on[y*m.w+x]
}

// outline sets the one-pixel border of r.
func (m *gridMask) outline(r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		m.on[r.Min.Y*m.w+x] = true
		m.on[(r.Max.Y-1)*m.w+x] = true
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		m.on[y*m.w+r.Min.X] = true
		m.on[y*m.w+r.Max.X-1] = true
	}
}

var iconShapeOptions = ShapeOptions{MinSize: 20, MaxSize: 150, MinAspect: 0.7, MaxAspect: 1.3}

func TestFindIconShapes(t *testing.T) {
	m := newGridMask(300, 200)
	m.outline(image.Rect(60, 60, 100, 100))   // 40x40 icon
	m.outline(image.Rect(150, 20, 250, 120))  // 100x100 icon
	m.outline(image.Rect(10, 150, 90, 180))   // 80x30, too wide
	m.outline(image.Rect(200, 150, 210, 160)) // 10x10, too small
	m.outline(image.Rect(0, 190, 300, 191))   // line

	shapes := FindIconShapes(m, iconShapeOptions)
	if len(shapes) != 2 {
		t.Fatalf("shapes: got %d, want 2: %+v", len(shapes), shapes)
	}

	if shapes[0].Width != 100 || shapes[0].Center != (Point{X: 200, Y: 70}) {
		t.Errorf("largest shape: got %+v", shapes[0])
	}
	if shapes[1].Bounds != (Bounds{X1: 60, Y1: 60, X2: 100, Y2: 100}) {
		t.Errorf("second shape bounds: got %+v", shapes[1].Bounds)
	}
	if shapes[1].Center != (Point{X: 80, Y: 80}) {
		t.Errorf("second shape center: got %+v", shapes[1].Center)
	}
	if shapes[1].Pixels != 4*40-4 {
		t.Errorf("contour pixels: got %d, want %d", shapes[1].Pixels, 4*40-4)
	}
}

func TestFindIconShapes_EqualAreasOrdered(t *testing.T) {
	m := newGridMask(200, 200)
	m.outline(image.Rect(120, 100, 150, 130))
	m.outline(image.Rect(20, 100, 50, 130))
	m.outline(image.Rect(70, 10, 100, 40))

	shapes := FindIconShapes(m, iconShapeOptions)
	if len(shapes) != 3 {
		t.Fatalf("shapes: got %d, want 3", len(shapes))
	}
	want := []Point{{85, 25}, {35, 115}, {135, 115}}
	for i, p := range want {
		if shapes[i].Center != p {
			t.Errorf("shape %d center: got %+v, want %+v", i, shapes[i].Center, p)
		}
	}
}

func TestFindIconShapes_Empty(t *testing.T) {
	if shapes := FindIconShapes(newGridMask(50, 50), iconShapeOptions); len(shapes) != 0 {
		t.Errorf("shapes: got %d, want 0", len(shapes))
	}
}

func TestFindContours_DropsSpecks(t *testing.T) {
	m := newGridMask(20, 20)
	m.on[5*20+5] = true
	m.on[5*20+6] = true
	for x := 0; x < 12; x++ {
		m.on[15*20+x] = true
	}

	contours := findContours(m.At, 20, 20, minContourPixels)
	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(contours))
	}
	if len(contours[0]) != 12 {
		t.Errorf("contour length: got %d, want 12", len(contours[0]))
	}
}

func TestFloodFill_DiagonalConnectivity(t *testing.T) {
	m := newGridMask(10, 10)
	for i := 0; i < 10; i++ {
		m.on[i*10+i] = true
	}

	visited := make([]bool, 100)
	var contour []Point
	floodFill(m.At, visited, 0, 0, 10, 10, &contour)
	if len(contour) != 10 {
		t.Errorf("diagonal component: got %d pixels, want 10", len(contour))
	}
}
