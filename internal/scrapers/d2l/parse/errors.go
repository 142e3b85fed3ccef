package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrPartial is returned when a "partial" response is missing its
	// guard or does not contain valid json.
	ErrPartial = errors.New("malformed partial")
	// ErrContentTree is returned when the content tree payload is missing.
	ErrContentTree = errors.New("malformed content tree")
	// ErrUserId is returned when the home document has no user id marker.
	ErrUserId = errors.New("could not find user id")
	// ErrEnrollmentUrl is returned when the home document has no
	// enrollments url marker.
	ErrEnrollmentUrl = errors.New("could not find enrollments url")
	// ErrSiren is returned for malformed enrollment api entities.
	ErrSiren = errors.New("malformed siren entity")
)

// ParseError wraps a parsing failure with the sentinel it belongs to.
type ParseError struct {
	Kind   error
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == e.Kind
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseError(kind error, detail string, err error) *ParseError {
	return &ParseError{Kind: kind, Detail: detail, Err: err}
}
