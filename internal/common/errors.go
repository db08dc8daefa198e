package common

import (
	"errors"
	"fmt"
)

var (

	// remote store errors
	ErrTransport = errors.New("transport error")
	ErrNotFound  = errors.New("not found")

	// local cache errors
	ErrDuplicateKey = errors.New("duplicate bill number")
	ErrNoData       = errors.New("no cached data")
	ErrStaleData    = errors.New("cached data expired")
)

// TransportError describes a failed exchange with the remote store: either
// the request never completed (Status is 0) or the store answered with a
// non-2xx status. It matches ErrTransport with errors.Is.
type TransportError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }
