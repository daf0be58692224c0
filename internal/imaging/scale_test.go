package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestToGray(t *testing.T) {
	t.Run("gray input keeps values", func(t *testing.T) {
		src := image.NewGray(image.Rect(10, 10, 14, 13))
		src.SetGray(11, 12, color.Gray{Y: 77})

		got := ToGray(src)
		if got.Bounds() != image.Rect(0, 0, 4, 3) {
			t.Fatalf("bounds: got %v, want rebased 4x3", got.Bounds())
		}
		if v := got.GrayAt(1, 2).Y; v != 77 {
			t.Errorf("pixel: got %d, want 77", v)
		}
		got.SetGray(1, 2, color.Gray{Y: 1})
		if src.GrayAt(11, 12).Y != 77 {
			t.Error("ToGray should copy, not share, pixels")
		}
	})

	t.Run("color input", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				src.Set(x, y, color.NRGBA{200, 200, 200, 255})
			}
		}
		got := ToGray(src)
		if v := got.GrayAt(0, 0).Y; v < 198 || v > 202 {
			t.Errorf("gray of (200,200,200): got %d", v)
		}
	})
}

func TestDownscale(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			// 2x2 blocks of constant value
			src.Pix[y*src.Stride+x] = uint8(10 * ((x / 2) + 4*(y/2)))
		}
	}

	got := Downscale(src, 2)
	if got.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("bounds: got %v, want 4x3", got.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := uint8(10 * (x + 4*y))
			if v := got.GrayAt(x, y).Y; v != want {
				t.Errorf("pixel (%d,%d): got %d, want %d", x, y, v, want)
			}
		}
	}

	if same := Downscale(src, 1); same.Bounds() != src.Bounds() {
		t.Errorf("factor 1 bounds: got %v", same.Bounds())
	}
}
