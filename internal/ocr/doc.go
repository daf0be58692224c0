// Package ocr provides the optional text recognizer used to confirm icon
// labels.
//
// Built with cgo, Tesseract is reached through gosseract; the tessdata for
// the configured language must be installed or pointed to with a tessdata
// prefix. Built without cgo (or with the notesseract tag) the same API
// exists but every call returns ErrUnavailable, and callers fall back to
// their pixel heuristics.
//
// Regions are preprocessed before recognition: Otsu binarization followed by
// a 2x cubic upscale, then recognized as a single uniform block of text.
package ocr
