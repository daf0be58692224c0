package ocr

import (
	"errors"
	"image"
)

// ErrUnavailable is returned when the binary was built without Tesseract
// support or the engine cannot be initialized.
var ErrUnavailable = errors.New("ocr: tesseract not available")

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognized word with its location and confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the engine's certainty from 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	// Bounds are in the coordinates of the image passed to Read.
	Bounds Bounds `json:"bounds"`
}

// Result is the text recognized in one image region.
type Result struct {
	Text  string `json:"text"`
	Words []Word `json:"words"`
}

// toSource maps a box found on the upscaled, rebased image back to the
// caller's coordinates.
func toSource(r image.Rectangle, origin image.Point, scale int) Bounds {
	return Bounds{
		X1: origin.X + r.Min.X/scale,
		Y1: origin.Y + r.Min.Y/scale,
		X2: origin.X + (r.Max.X+scale-1)/scale,
		Y2: origin.Y + (r.Max.Y+scale-1)/scale,
	}
}
