package detection

import (
	"image"
	"testing"
)

// strokeImage draws n vertical strokes of the given width and pitch, each
// covering rows [top, bottom).
func strokeImage(width, height, n, strokeWidth, pitch, x0, top, bottom int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	fillGray(img, img.Rect, 230)
	for k := 0; k < n; k++ {
		fillGray(img, image.Rect(x0+k*pitch, top, x0+k*pitch+strokeWidth, bottom), 20)
	}
	return img
}

func TestColumnProfile(t *testing.T) {
	img := strokeImage(20, 10, 1, 2, 0, 5, 2, 8)

	profile := ColumnProfile(img, 128)
	if len(profile) != 20 {
		t.Fatalf("profile length: got %d, want 20", len(profile))
	}
	if profile[5] != 6 || profile[6] != 6 || profile[4] != 0 || profile[7] != 0 {
		t.Errorf("profile: got %v", profile)
	}
}

func TestStrokeRuns(t *testing.T) {
	tests := []struct {
		name string
		img  *image.Gray
		want int
	}{
		{"seven strokes", strokeImage(100, 30, 7, 4, 10, 10, 5, 25), 7},
		{"strokes too short", strokeImage(100, 30, 7, 4, 10, 10, 0, 8), 0},
		{"touching strokes merge", strokeImage(100, 30, 3, 10, 10, 10, 5, 25), 1},
		{"run open at right edge", strokeImage(40, 30, 2, 6, 17, 17, 0, 30), 2},
		{"blank", strokeImage(50, 30, 0, 0, 0, 0, 0, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StrokeRuns(tt.img, 128, 0.3); got != tt.want {
				t.Errorf("StrokeRuns: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStrokeRuns_SubImage(t *testing.T) {
	img := strokeImage(100, 60, 5, 3, 8, 20, 30, 50)
	sub := img.SubImage(image.Rect(0, 25, 100, 55)).(*image.Gray)

	if got := StrokeRuns(sub, 128, 0.3); got != 5 {
		t.Errorf("StrokeRuns on sub-image: got %d, want 5", got)
	}
}

func TestRunBand(t *testing.T) {
	tests := []struct {
		n, lo, hi int
	}{
		{7, 5, 10},
		{1, 1, 4},
		{3, 1, 6},
		{12, 10, 15},
	}
	for _, tt := range tests {
		lo, hi := RunBand(tt.n)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("RunBand(%d): got [%d,%d], want [%d,%d]", tt.n, lo, hi, tt.lo, tt.hi)
		}
	}
}
