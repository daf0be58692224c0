package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ClampRect shifts r so it lies inside bounds, shrinking it only when it is
// larger than bounds. A region that runs past the right or bottom edge keeps
// its size and moves back inside.
func ClampRect(r, bounds image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w > bounds.Dx() {
		w = bounds.Dx()
	}
	if h > bounds.Dy() {
		h = bounds.Dy()
	}
	x := clamp(r.Min.X, bounds.Min.X, bounds.Max.X-w)
	y := clamp(r.Min.Y, bounds.Min.Y, bounds.Max.Y-h)
	return image.Rect(x, y, x+w, y+h)
}

// CenteredRect returns the size x size square centered on (cx, cy).
func CenteredRect(cx, cy, size int) image.Rectangle {
	return image.Rect(cx-size/2, cy-size/2, cx-size/2+size, cy-size/2+size)
}

// CropRegion copies the part of img inside r. The result is anchored at (0,0).
func CropRegion(img image.Image, r image.Rectangle) (*image.NRGBA, error) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region outside image bounds %v", img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// Crop extracts a rectangular region and optionally scales it, returning the
// result as a base64 PNG.
func Crop(img image.Image, r image.Rectangle, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", r, bounds)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: %v", r)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.CatmullRom)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           r.Min.X,
		Y:           r.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
