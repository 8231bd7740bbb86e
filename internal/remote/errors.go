package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a call that did not produce a usable response:
// network failure, non-2xx status, or a body that is not a JSON envelope.
type TransportError struct {
	Action     Action
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: status %d (%s): %v", e.Action, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a response envelope with success=false.
type APIError struct {
	Action  Action
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote %s: request rejected", e.Action)
	}
	return fmt.Sprintf("remote %s: %s", e.Action, e.Message)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPI reports whether err is (or wraps) an APIError.
func IsAPI(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
