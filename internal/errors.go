package weverse

import (
	"errors"
	"fmt"
)

// ErrDiskSpace is returned when a media download would not fit on the target
// filesystem. It is fatal to the batch that encounters it.
var ErrDiskSpace = errors.New("not enough disk space")

// ErrNoCredentials is returned by constructors when neither a password pair
// nor a token is supplied.
var ErrNoCredentials = errors.New("weverse: no credentials provided")

// AuthError indicates a failed login or an exhausted refresh token.
type AuthError struct {
	// StatusCode is the HTTP status from the account service, if any.
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	msg := "auth error"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status code %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError indicates a network failure or a non-2xx status outside the
// gate's one-shot 401 reauthorization path.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error @ %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error @ %s: status code %d", e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indicates a response that failed its expected shape and was
// rejected before reaching the cache.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error @ %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReferentialError indicates an admitted record referencing a parent entity
// that is absent from the cache.
type ReferentialError struct {
	// Kind names the entity kind being admitted, Parent the missing parent.
	Kind     string
	Parent   string
	ID       int64
	ParentID int64
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %d references unknown %s %d", e.Kind, e.ID, e.Parent, e.ParentID)
}
