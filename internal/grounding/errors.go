package grounding

import "errors"

var (
	// ErrNotFound is returned when every attempt finished without any
	// strategy accepting a candidate.
	ErrNotFound = errors.New("icon not found")

	// ErrTemplateUnavailable means no decodable reference template exists
	// at the configured path. The template strategy treats it as a skip.
	ErrTemplateUnavailable = errors.New("template unavailable")
)

// NotFoundError is the error Chain.Locate returns when every attempt is
// spent. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	RunID    string
	Attempts int
}

func (e *NotFoundError) Error() string { return ErrNotFound.Error() }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
