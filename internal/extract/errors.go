package extract

import (
	"errors"
	"fmt"

	"github.com/resumeforge/reconcile/internal/types"
)

// ErrorKind classifies extraction failures so the pipeline can decide
// between retrying and permanently skipping a file.
type ErrorKind string

const (
	// UnsupportedFormat means the document kind can never be extracted.
	// Permanent: the pipeline marks the file processed to stop retry
	// storms.
	UnsupportedFormat ErrorKind = "unsupported_format"

	// Timeout means the extraction call exceeded its deadline. Transient.
	Timeout ErrorKind = "timeout"

	// ServiceError means the extraction service failed or returned
	// garbage. Transient.
	ServiceError ErrorKind = "service_error"

	// EmptyResult means the service answered but extracted nothing
	// usable from the document. Transient (a better model pass may
	// succeed), though repeated empties usually mean a scanned image.
	EmptyResult ErrorKind = "empty_result"
)

// Error is a classified extraction failure.
type Error struct {
	Kind     ErrorKind
	Filename string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction of %s failed (%s): %v", e.Filename, e.Kind, e.Err)
	}
	return fmt.Sprintf("extraction of %s failed (%s)", e.Filename, e.Kind)
}

func (e *Error) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	// All extraction failures are external-service failures to callers
	// that only care about the coarse kind.
	return types.ErrExternalService
}

// Permanent reports whether retrying this failure can never succeed.
func (e *Error) Permanent() bool {
	return e.Kind == UnsupportedFormat
}

// KindOf returns the classification of err, or "" if err is not an
// extraction error.
func KindOf(err error) ErrorKind {
	var xerr *Error
	if errors.As(err, &xerr) {
		return xerr.Kind
	}
	return ""
}
