package clients

import (
	"fmt"
	"net/http"

	"github.com/spf13/cast"
)

// NetworkError means the backend could not be reached at all.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Payload holds the decoded error body
// (a JSON value, or the raw text when the body is not JSON).
type HTTPError struct {
	StatusCode int
	Payload    interface{}
	Message    string
}

func newHTTPError(status int, payload interface{}) *HTTPError {
	e := &HTTPError{StatusCode: status, Payload: payload}
	if code := e.Code(); code != "" {
		e.Message = code
	} else {
		e.Message = fmt.Sprintf("API %d: %s", status, http.StatusText(status))
	}
	return e
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Code is the "error" field of a JSON object payload, if any.
func (e *HTTPError) Code() string {
	body, ok := e.Payload.(map[string]interface{})
	if !ok {
		return ""
	}
	return cast.ToString(body["error"])
}

// ShapeError is a 2xx response whose body did not have the expected form.
type ShapeError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response from %s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected response from %s: %s", e.Endpoint, e.Reason)
}

func (e *ShapeError) Unwrap() error { return e.Err }
