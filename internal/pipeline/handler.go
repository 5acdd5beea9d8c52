package pipeline

import (
	"net/http"
	"time"
)

// Handler serves a request and reports what it sent.
type Handler interface {
	Serve(w http.ResponseWriter, r *http.Request) Outcome
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) Outcome

// Serve calls f(w, r).
func (f HandlerFunc) Serve(w http.ResponseWriter, r *http.Request) Outcome {
	return f(w, r)
}

// Middleware wraps the next stage of the chain.
type Middleware func(next Handler) Handler

// Chain wraps h with mws. The first middleware is the outermost one and sees
// the request first.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// HTTPHandler adapts h to net/http. The outcome is dropped; it has already
// been written to w.
func HTTPHandler(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r)
	})
}

// Clock supplies the instants used to time requests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now. Its readings carry the monotonic clock, so
// differences between them never go backwards.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }
