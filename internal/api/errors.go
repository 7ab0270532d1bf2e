package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformed means the body could not be parsed into the expected shape.
	ErrMalformed = errors.New("malformed response")

	// ErrIncompatibleBackend is returned by CheckVersion when the backend
	// reports a version older than MinBackendVersion.
	ErrIncompatibleBackend = errors.New("incompatible backend version")
)

// StatusError is a non-2xx response. Message is the gateway's own error text
// when the body carried one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
}

// FetchError wraps any failure of a content request: transport errors,
// StatusError and ErrMalformed. Cancellation is wrapped too, so callers
// check errors.Is(err, context.Canceled) before showing it.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message returns the text to show the user: the gateway message when there
// is one, else the full error.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
