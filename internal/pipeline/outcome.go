// Package pipeline defines the request-handling chain: handlers that report an
// Outcome for each request, middleware that wraps them, and the access-logging
// middleware.
package pipeline

import (
	"net/http"
	"strconv"
)

// Outcome is the result of serving one request. It is either a Success or a
// Failure. The response body has already been written to the client when an
// Outcome is returned; the Outcome only describes it.
type Outcome interface {
	StatusCode() int
	isOutcome()
}

// Success describes a response that was served.
type Success struct {
	Status      int
	ContentType string
	Bytes       int64
}

// Failure describes a request that could not be served.
type Failure struct {
	Status int
	Reason string
}

// StatusCode returns the HTTP status sent to the client.
func (s Success) StatusCode() int { return s.Status }

func (Success) isOutcome() {}

// StatusCode returns the HTTP status sent to the client.
func (f Failure) StatusCode() int { return f.Status }

func (Failure) isOutcome() {}

// Error lets a Failure be returned or wrapped as an error.
func (f Failure) Error() string {
	return strconv.Itoa(f.Status) + " " + f.reason()
}

func (f Failure) reason() string {
	if f.Reason != "" {
		return f.Reason
	}
	if text := http.StatusText(f.Status); text != "" {
		return text
	}
	return "request failed"
}

// WriteFailure sends f to the client as a plain-text error response.
func WriteFailure(w http.ResponseWriter, f Failure) {
	http.Error(w, f.reason(), f.Status)
}
