// Package api provides the hospital directory API client and its error types.
package api

import (
	"errors"
	"fmt"
	nethttp "net/http"
	"strings"
)

// ErrMalformedResponse indicates the server answered 2xx with a body that is
// not the expected JSON envelope.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string // status text without the code, e.g. "Not Found"
	Body       string // first bytes of the response body, for debugging
}

// Error mirrors the message shown to users in the listing error banner.
func (e *StatusError) Error() string {
	return "Failed to fetch: " + e.Status
}

func newStatusError(resp *nethttp.Response, body []byte) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Body:       string(body),
	}
}

// statusText strips the numeric prefix from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *nethttp.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = nethttp.StatusText(resp.StatusCode)
	}
	return text
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
