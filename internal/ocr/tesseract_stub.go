//go:build !cgo || notesseract

package ocr

import (
	"context"
	"image"
)

// Tesseract is the recognizer used when the binary is built without
// Tesseract support. Every call fails with ErrUnavailable, so label
// verification falls back to stroke counting.
type Tesseract struct {
	language       string
	tessdataPrefix string
}

// NewTesseract creates a recognizer that is never available.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	return &Tesseract{language: language, tessdataPrefix: tessdataPrefix}
}

// Available always reports false.
func (t *Tesseract) Available() bool { return false }

// Recognize always fails with ErrUnavailable.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrUnavailable
}

// Read always fails with ErrUnavailable.
func (t *Tesseract) Read(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}
