// Package errs defines the error kinds shared by every stage of the phoneme
// feature pipeline. Each error returned by the pipeline wraps exactly one kind,
// so callers can branch with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad marks an unreadable or empty recording.
	ErrLoad = errors.New("load error")
	// ErrAnnotationParse marks a malformed annotation row.
	ErrAnnotationParse = errors.New("annotation parse error")
	// ErrConfiguration marks invalid spans, geometry or settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrMetadata marks a subject record with missing required fields.
	ErrMetadata = errors.New("metadata error")
	// ErrWrite marks an unwritable dataset destination. It is fatal to a run.
	ErrWrite = errors.New("write error")
)

// kindError pairs a sentinel kind with a message and an optional cause.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// newf builds a kindError. A trailing %w verb in format is peeled off into the
// cause so the chain stays inspectable.
func newf(kind error, format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	var cause error
	if u, ok := wrapped.(interface{ Unwrap() error }); ok {
		cause = u.Unwrap()
	}
	msg := wrapped.Error()
	if cause != nil {
		suffix := ": " + cause.Error()
		if len(msg) >= len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			msg = msg[:len(msg)-len(suffix)]
		}
	}
	return &kindError{kind: kind, msg: msg, cause: cause}
}

func Loadf(format string, args ...any) error {
	return newf(ErrLoad, format, args...)
}

func Annotationf(format string, args ...any) error {
	return newf(ErrAnnotationParse, format, args...)
}

func Configurationf(format string, args ...any) error {
	return newf(ErrConfiguration, format, args...)
}

func Metadataf(format string, args ...any) error {
	return newf(ErrMetadata, format, args...)
}

func Writef(format string, args ...any) error {
	return newf(ErrWrite, format, args...)
}

// Kind returns the short name of the error kind wrapped by err. When kinds
// are nested, the outermost one wins.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return kindName(ke.kind)
	}
	return kindName(err)
}

func kindName(err error) string {
	switch {
	case errors.Is(err, ErrLoad):
		return "load"
	case errors.Is(err, ErrAnnotationParse):
		return "annotation"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrMetadata):
		return "metadata"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "unknown"
	}
}
