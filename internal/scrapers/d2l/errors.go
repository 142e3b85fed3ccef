package d2l

import (
	"errors"
	"fmt"
	"time"
	"valence/internal/scrapers/d2l/parse"
)

var (
	// ErrApiToken is matched by every *TokenError.
	ErrApiToken = errors.New("could not acquire api token")

	// ErrUserId and ErrEnrollmentUrl mean the home document is not the
	// page we expected, usually because the session cookies are stale.
	ErrUserId        = parse.ErrUserId
	ErrEnrollmentUrl = parse.ErrEnrollmentUrl
)

// TokenError is returned by Session.Token.
type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api token: %s: %s", e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("api token: %s", e.Reason)
}

func (e *TokenError) Is(target error) bool {
	return target == ErrApiToken
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// EnrollmentStep names the hop of the enrollment fetch that failed.
type EnrollmentStep string

const (
	StepBaseDocument EnrollmentStep = "base-document"
	StepToken        EnrollmentStep = "token"
	StepCollection   EnrollmentStep = "collection"
	StepEnrollment   EnrollmentStep = "enrollment"
	StepOrganization EnrollmentStep = "organization"
)

type EnrollmentFetchError struct {
	Step EnrollmentStep
	Url  string
	Err  error
}

func (e *EnrollmentFetchError) Error() string {
	if e.Url != "" {
		return fmt.Sprintf("fetch enrollments: %s (%s): %s", e.Step, e.Url, e.Err.Error())
	}
	return fmt.Sprintf("fetch enrollments: %s: %s", e.Step, e.Err.Error())
}

func (e *EnrollmentFetchError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any response with a status >= 400.
type StatusError struct {
	Method     string
	Url        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %s", e.Method, e.Url, e.Status)
}

// TimeoutError replaces the transport's deadline error.
type TimeoutError struct {
	Method string
	Url    string
	After  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: request timed out after %s", e.Method, e.Url, e.After)
}

func (e *TimeoutError) Timeout() bool {
	return true
}
