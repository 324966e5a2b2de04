package ingest

import (
	"errors"
	"fmt"
)

// Kind classifies an ingestion failure.
type Kind int

const (
	// UnsupportedType means the source is not declared as plain text.
	// No read was attempted.
	UnsupportedType Kind = iota + 1
	// ReadFailure means the read or decode failed after the source was accepted.
	ReadFailure
)

func (k Kind) String() string {
	switch k {
	case UnsupportedType:
		return "unsupported type"
	case ReadFailure:
		return "read failure"
	}
	return "unknown"
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedType = &Error{Kind: UnsupportedType}
	ErrReadFailure     = &Error{Kind: ReadFailure}
)

// ErrTooLarge is wrapped by a ReadFailure when the content exceeds Options.MaxBytes.
var ErrTooLarge = errors.New("file exceeds size limit")

// Error is returned by Ingest for every failure.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg = fmt.Sprintf("%s: %s", e.Name, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage returns the text shown to the reader.
func (e *Error) UserMessage() string {
	if e.Kind == UnsupportedType {
		return "Please upload a text (.txt) file"
	}
	return "Failed to read file. Please try again."
}

func unsupported(name, mediaType string) *Error {
	var cause error
	if mediaType != "" {
		cause = fmt.Errorf("media type %q", mediaType)
	}
	return &Error{Kind: UnsupportedType, Name: name, Err: cause}
}

func readFailure(name string, err error) *Error {
	return &Error{Kind: ReadFailure, Name: name, Err: err}
}
