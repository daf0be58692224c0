package grounding

import (
	"context"
	"image"
	"strings"

	"github.com/ironsheep/icon-locator/internal/config"
	"github.com/ironsheep/icon-locator/internal/detection"
	"github.com/ironsheep/icon-locator/internal/imaging"
	"github.com/ironsheep/icon-locator/internal/logging"
)

// Recognizer reads text from an image region. ocr.Tesseract satisfies it.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Verification methods.
const (
	VerifiedByOCR     = "ocr"
	VerifiedByStrokes = "strokes"
)

// Verification describes how a label region was judged.
type Verification struct {
	Verified bool            `json:"verified"`
	Method   string          `json:"method,omitempty"`
	Region   image.Rectangle `json:"region"`

	// Text is what the recognizer read, if it ran.
	Text string `json:"text,omitempty"`

	// Runs is the stroke count; -1 when stroke counting did not run.
	Runs    int `json:"runs"`
	MinRuns int `json:"min_runs"`
	MaxRuns int `json:"max_runs"`
}

// LabelVerifier checks whether the text under a candidate looks like the
// expected icon label.
//
// Recognition runs first when a Recognizer is configured. When it is absent,
// fails, or reads something else, the region's glyph strokes are counted and
// compared with the range expected for the label's length.
type LabelVerifier struct {
	cfg        config.LabelConfig
	recognizer Recognizer
	logger     *logging.Logger
}

// NewLabelVerifier creates a verifier. recognizer and logger may be nil.
func NewLabelVerifier(cfg config.LabelConfig, recognizer Recognizer, logger *logging.Logger) *LabelVerifier {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &LabelVerifier{cfg: cfg, recognizer: recognizer, logger: logger}
}

// HasRecognizer reports whether OCR is configured.
func (v *LabelVerifier) HasRecognizer() bool {
	return v.recognizer != nil
}

// LabelRegion returns the strip where the candidate's label is expected:
// Margin pixels below the candidate window, Height tall and twice the
// window size wide, centered on the candidate. A strip that leaves the
// frame is moved back inside it.
func (v *LabelVerifier) LabelRegion(frame *imaging.Frame, c Candidate) image.Rectangle {
	top := c.Y + c.Size/2 + v.cfg.Margin
	left := c.X - c.Size
	r := image.Rect(left, top, left+2*c.Size, top+v.cfg.Height)
	return imaging.ClampRect(r, frame.Bounds())
}

// Verify checks the label region below c.
func (v *LabelVerifier) Verify(ctx context.Context, frame *imaging.Frame, c Candidate, label string) bool {
	return v.Inspect(ctx, frame, v.LabelRegion(frame, c), label).Verified
}

// VerifyRegion checks an explicit region, clipped to the frame.
func (v *LabelVerifier) VerifyRegion(ctx context.Context, frame *imaging.Frame, r image.Rectangle, label string) bool {
	return v.Inspect(ctx, frame, r, label).Verified
}

// Inspect checks r and reports how the decision was reached. An empty
// region never verifies.
func (v *LabelVerifier) Inspect(ctx context.Context, frame *imaging.Frame, r image.Rectangle, label string) Verification {
	r = r.Intersect(frame.Bounds())
	result := Verification{Region: r, Runs: -1}
	if r.Empty() {
		return result
	}

	if v.recognizer != nil {
		text, err := v.recognizer.Recognize(ctx, imaging.ToGray(frame.GrayRegion(r)))
		switch {
		case err != nil:
			v.logger.Debug("label recognition failed", "region", r.String(), "error", err)
		case labelMatches(text, label):
			result.Verified = true
			result.Method = VerifiedByOCR
			result.Text = text
			return result
		default:
			result.Text = text
		}
	}

	lo, hi := v.runBand(label)
	runs := detection.StrokeRuns(frame.GrayRegion(r), uint8(v.cfg.DarkThreshold), v.cfg.ColumnCoverage)
	result.Runs, result.MinRuns, result.MaxRuns = runs, lo, hi
	if runs >= lo && runs <= hi {
		result.Verified = true
		result.Method = VerifiedByStrokes
	}
	return result
}

func (v *LabelVerifier) runBand(label string) (int, int) {
	if v.cfg.MinRuns > 0 && v.cfg.MaxRuns > 0 {
		return v.cfg.MinRuns, v.cfg.MaxRuns
	}
	return detection.RunBand(len([]rune(label)))
}

func labelMatches(text, label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), label)
}
