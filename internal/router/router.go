// Package router dispatches requests to the index document or to the generic
// static file route.
package router

import (
	"net/http"
	"path"

	"github.com/f4ah6o/serve-go/internal/pipeline"
)

// DefaultIndex is the index document served for "/" when none is configured.
const DefaultIndex = "index.html"

// ErrNoIndex is the failure reported when "/" has no index document to serve.
var ErrNoIndex = pipeline.Failure{Status: http.StatusNotFound, Reason: "Unable to find index file"}

// Engine is the file-serving backend the router delegates to.
type Engine interface {
	// Serve resolves the request path under the root directory.
	Serve(w http.ResponseWriter, r *http.Request) pipeline.Outcome
	// ServeFile serves one named file, whatever the request path.
	ServeFile(w http.ResponseWriter, r *http.Request, name string) pipeline.Outcome
	// Exists reports whether name is a readable regular file.
	Exists(name string) bool
}

// Options configures a Router.
type Options struct {
	// Index is the file, relative to the root, served for "/".
	Index string
	// IndexFallback lets "/" fall through to the static route when the
	// index document is missing.
	IndexFallback bool
}

// Router serves "/" from the index document and everything else from the
// engine's static route. It does not log; wrap it with pipeline.Logging once.
type Router struct {
	engine   Engine
	index    string
	fallback bool
}

// New creates a Router over engine.
func New(engine Engine, opts Options) *Router {
	index := opts.Index
	if index == "" {
		index = DefaultIndex
	}
	return &Router{
		engine:   engine,
		index:    path.Clean("/" + index),
		fallback: opts.IndexFallback,
	}
}

// Index returns the root-relative name of the index document.
func (rt *Router) Index() string {
	return rt.index
}

// Serve implements pipeline.Handler.
func (rt *Router) Serve(w http.ResponseWriter, r *http.Request) pipeline.Outcome {
	if r.URL.Path != "/" {
		return rt.engine.Serve(w, r)
	}

	if rt.engine.Exists(rt.index) {
		return rt.engine.ServeFile(w, r, rt.index)
	}
	if rt.fallback {
		return rt.engine.Serve(w, r)
	}
	pipeline.WriteFailure(w, ErrNoIndex)
	return ErrNoIndex
}
