//go:build cgo && !notesseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes label text with the native Tesseract engine.
type Tesseract struct {
	language       string
	tessdataPrefix string
}

// NewTesseract creates a recognizer for the given language. An empty
// tessdataPrefix leaves Tesseract's own data lookup in place.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	return &Tesseract{language: language, tessdataPrefix: tessdataPrefix}
}

// Available reports whether the engine can be initialized.
func (t *Tesseract) Available() bool {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// Recognize returns the text of img, treated as a single block.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	result, err := t.Read(ctx, img)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Read runs recognition on a preprocessed copy of img and returns the text
// and the word boxes in img's coordinates.
func (t *Tesseract) Read(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, Preprocess(img)); err != nil {
		return nil, fmt.Errorf("failed to encode ocr image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Text: strings.TrimSpace(text), Words: []Word{}}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text without boxes is still a usable answer.
		return result, nil
	}
	origin := img.Bounds().Min
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		result.Words = append(result.Words, Word{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
			Bounds:     toSource(box.Box, origin, UpscaleFactor),
		})
	}
	return result, nil
}
