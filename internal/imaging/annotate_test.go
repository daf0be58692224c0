package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func uniformFrame(width, height int, v uint8) *Frame {
	g := image.NewGray(image.Rect(0, 0, width, height))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return NewFrameFromGray(g)
}

func TestNewAnnotator(t *testing.T) {
	a, err := NewAnnotator("#00FF00", 30, 3, 5)
	if err != nil {
		t.Fatalf("NewAnnotator failed: %v", err)
	}
	if got := a.Marker(); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("marker: got %v", got)
	}

	if _, err := NewAnnotator("green", 30, 3, 5); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestAnnotator_Mark(t *testing.T) {
	frame := uniformFrame(200, 150, 50)
	a, err := NewAnnotator("#FF0000", 30, 3, 5)
	if err != nil {
		t.Fatalf("NewAnnotator failed: %v", err)
	}

	out := a.Mark(frame, image.Pt(80, 75), "Notepad")
	red := color.NRGBA{255, 0, 0, 255}

	tests := []struct {
		name   string
		x, y   int
		marked bool
	}{
		{"center dot", 80, 75, true},
		{"dot edge", 84, 75, true},
		{"ring right", 110, 75, true},
		{"ring top", 80, 45, true},
		{"inside ring", 95, 75, false},
		{"outside ring", 80, 110, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := out.NRGBAAt(tt.x, tt.y) == red
			if got != tt.marked {
				t.Errorf("pixel (%d,%d) marked: got %v, want %v", tt.x, tt.y, got, tt.marked)
			}
		})
	}

	if frame.Color().NRGBAAt(80, 75).R != 50 {
		t.Error("Mark must not modify the frame")
	}
}

func TestAnnotator_MarkNearBorder(t *testing.T) {
	frame := uniformFrame(40, 40, 0)
	a, _ := NewAnnotator("#00FF00", 30, 3, 5)

	out := a.Mark(frame, image.Pt(2, 2), "edge")
	if out.Bounds() != frame.Bounds() {
		t.Errorf("bounds: got %v", out.Bounds())
	}
}

func TestAnnotator_Boxes(t *testing.T) {
	frame := uniformFrame(100, 100, 0)
	a, _ := NewAnnotator("#0000FF", 30, 3, 5)

	out := a.Boxes(frame, []image.Rectangle{image.Rect(20, 20, 60, 60)})
	blue := color.NRGBA{0, 0, 255, 255}
	if out.NRGBAAt(40, 59) != blue || out.NRGBAAt(59, 40) != blue {
		t.Error("expected outline on bottom and right edges")
	}
	if out.NRGBAAt(40, 40) == blue {
		t.Error("box interior should not be filled")
	}
}

func TestSaveAnnotated(t *testing.T) {
	frame := uniformFrame(20, 20, 90)
	a, _ := NewAnnotator("#00FF00", 5, 1, 1)
	path := filepath.Join(t.TempDir(), "annotated.png")

	if err := SaveAnnotated(path, a.Mark(frame, image.Pt(10, 10), "")); err != nil {
		t.Fatalf("SaveAnnotated failed: %v", err)
	}
	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("width: got %d, want 20", img.Bounds().Dx())
	}
}
