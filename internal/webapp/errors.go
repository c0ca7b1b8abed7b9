package webapp

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnreachable wraps failures to reach the web app at all.
	ErrUnreachable = errors.New("fetch failed")
	// ErrMalformedResponse is returned when the body is not the expected JSON.
	ErrMalformedResponse = errors.New("response is not valid JSON")
	// ErrNoURL is returned when no web app URL is configured.
	ErrNoURL = errors.New("web app URL is not set")
	// ErrInvalidURL is returned for URLs that are not http(s).
	ErrInvalidURL = errors.New("invalid URL, must start with http:// or https://")
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Network error: %d - %s", e.Code, e.Status)
}

func newStatusError(code int) *StatusError {
	return &StatusError{Code: code, Status: http.StatusText(code)}
}

// ScriptError is a 2xx response whose status field is not "success".
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return "Google Script Error: " + e.Message
}

// IsRateLimited reports whether err is an HTTP 429 from the web app.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusTooManyRequests
}

// Message maps a client error to the text shown to the user.
func Message(err error) string {
	var (
		se *StatusError
		sc *ScriptError
	)
	switch {
	case err == nil:
		return ""
	case IsRateLimited(err):
		return "Google Apps Script is rate limiting. Too many requests. Please wait a while before logging again."
	case errors.Is(err, ErrUnreachable):
		return "Fetch failed. Check URL, network, or CORS. Did you re-deploy and update the URL?"
	case errors.Is(err, ErrMalformedResponse):
		return "Google Script did not return valid JSON. Check your Apps Script code for errors."
	case errors.Is(err, ErrNoURL):
		return "Google Apps Script URL is not set."
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &sc):
		return sc.Error()
	default:
		return err.Error()
	}
}
