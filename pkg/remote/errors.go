package remote

import (
	"errors"
	"fmt"
)

var (
	ErrRemote          = errors.New("remote request failed")
	ErrMissingPublicID = errors.New("missing public id")
	ErrInvalidResponse = errors.New("invalid response body")
)

// Error describes a failed call to the sync endpoint. StatusCode is zero when
// the request never produced a response.
type Error struct {
	Method     string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", ErrRemote, e.Method, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", ErrRemote, e.Method, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", ErrRemote, e.Method, e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRemote }
