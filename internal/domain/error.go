package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrInvalidURL     = errors.New("invalid url")
	ErrTooLong        = errors.New("video too long")
	ErrTooLarge       = errors.New("video file too large")
	ErrDownloadFailed = errors.New("download failed")
	ErrFileMissing    = errors.New("downloaded file is missing")
	ErrBusy           = errors.New("download workers are saturated")
	ErrInFlight       = errors.New("chat already has a download in progress")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// ExtractionError carries the engine's failure detail for a probe or download call.
type ExtractionError struct {
	Detail string
	Err    error
}

func NewExtractionError(err error) *ExtractionError {
	if err == nil {
		return &ExtractionError{Detail: "unknown extraction error"}
	}
	return &ExtractionError{Detail: err.Error(), Err: err}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction: %s", e.Detail)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
