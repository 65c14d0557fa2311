package pipeline

import (
	"errors"
	"fmt"
)

// ErrKind classifies pipeline failures so the HTTP layer can map them to
// status codes without inspecting error strings.
type ErrKind string

const (
	// ErrKindDownload covers every way the download stage can fail: the
	// tool could not start, crashed, never announced a destination, or
	// announced one that does not exist on disk.
	ErrKindDownload ErrKind = "download"

	// ErrKindTranscode covers audio conversion failures.
	ErrKindTranscode ErrKind = "transcode"

	// ErrKindInference covers transport and model errors on the AI call.
	ErrKindInference ErrKind = "inference"

	// ErrKindMalformedResponse means the model replied but its reply was
	// not the expected JSON object.
	ErrKindMalformedResponse ErrKind = "malformed_response"
)

// Error is a stage-tagged pipeline failure. Raw carries the unparsed model
// reply for malformed-response failures; it is logged server-side and must
// never reach an HTTP client.
type Error struct {
	Kind ErrKind
	Err  error
	Raw  string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a failure kind.
func NewError(kind ErrKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewMalformedResponse tags a reply that could not be parsed, preserving
// the raw text for diagnostics.
func NewMalformedResponse(raw string, err error) *Error {
	return &Error{Kind: ErrKindMalformedResponse, Err: err, Raw: raw}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (ErrKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
