package dispatch

import (
	"fmt"
	"strings"
)

// TransportError reports that no HTTP response was received: connection
// refused, DNS failure, timeout, or a body that could not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "dispatch api: transport failure"
	}
	return "dispatch api: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports an HTTP status other than 200. The body is not
// inspected beyond capturing a snippet; a non-200 response may not carry
// JSON at all.
type StatusError struct {
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("dispatch api: unexpected status %d", e.Code)
	}
	return fmt.Sprintf("dispatch api: unexpected status %d: %s", e.Code, e.Snippet)
}

// EmptyBodyError reports a 200 response that carried no body bytes.
type EmptyBodyError struct{}

func (e *EmptyBodyError) Error() string {
	return "dispatch api: empty response body"
}

// MalformedError reports a response body that could not be parsed as JSON,
// or whose top-level value is not a JSON object.
type MalformedError struct {
	Err     error
	Snippet string
}

func (e *MalformedError) Error() string {
	msg := "dispatch api: malformed response"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += " (body: " + e.Snippet + ")"
	}
	return msg
}

func (e *MalformedError) Unwrap() error { return e.Err }

// APIError reports a well-formed response whose success flag was not true.
// Message carries the envelope's free-form error field rendered as text.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "dispatch api: request failed"
	}
	return "dispatch api: request failed: " + e.Message
}

const snippetLimit = 200

// snippet collapses a response body to a single bounded line for error
// messages and logs.
func snippet(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > snippetLimit {
		s = s[:snippetLimit] + "..."
	}
	return s
}
