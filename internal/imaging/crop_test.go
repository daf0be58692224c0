package imaging

import (
	"encoding/base64"
	"image"
	"image/color"
	"testing"
)

func TestClampRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	tests := []struct {
		name string
		in   image.Rectangle
		want image.Rectangle
	}{
		{"inside", image.Rect(10, 10, 30, 30), image.Rect(10, 10, 30, 30)},
		{"past right edge", image.Rect(90, 10, 110, 30), image.Rect(80, 10, 100, 30)},
		{"past bottom edge", image.Rect(10, 70, 30, 100), image.Rect(10, 50, 30, 80)},
		{"negative origin", image.Rect(-5, -5, 15, 15), image.Rect(0, 0, 20, 20)},
		{"wider than bounds", image.Rect(-10, 0, 150, 10), image.Rect(0, 0, 100, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampRect(tt.in, bounds); got != tt.want {
				t.Errorf("ClampRect(%v): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCenteredRect(t *testing.T) {
	if got := CenteredRect(50, 40, 32); got != image.Rect(34, 24, 66, 56) {
		t.Errorf("CenteredRect: got %v", got)
	}
}

func TestCropRegion(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	img.SetNRGBA(20, 20, color.NRGBA{255, 0, 0, 255})

	out, err := CropRegion(img, image.Rect(15, 15, 60, 25))
	if err != nil {
		t.Fatalf("CropRegion failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 35, 10) {
		t.Errorf("bounds: got %v, want (0,0)-(35,10)", out.Bounds())
	}
	if c := out.NRGBAAt(5, 5); c.R != 255 {
		t.Errorf("pixel moved: got %v", c)
	}

	if _, err := CropRegion(img, image.Rect(60, 60, 70, 70)); err == nil {
		t.Error("expected error for region outside the image")
	}
}

func TestCrop(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))

	result, err := Crop(img, image.Rect(10, 10, 30, 20), 2.0)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if result.Width != 40 || result.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", result.Width, result.Height)
	}
	if result.X != 10 || result.Y != 10 {
		t.Errorf("origin: got (%d,%d), want (10,10)", result.X, result.Y)
	}
	if _, err := base64.StdEncoding.DecodeString(result.ImageBase64); err != nil {
		t.Errorf("invalid base64: %v", err)
	}

	if _, err := Crop(img, image.Rect(30, 30, 50, 50), 1.0); err == nil {
		t.Error("expected error for out-of-bounds crop")
	}
}
