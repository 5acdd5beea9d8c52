// Package fileserver serves files from a directory tree and reports an
// Outcome for every request.
package fileserver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"

	"github.com/f4ah6o/serve-go/internal/pipeline"
)

// Options controls optional engine behavior.
type Options struct {
	// Listing enables generated listings for directories without an
	// index.html. When false such directories answer 404.
	Listing bool
}

// Engine serves files from an afero filesystem. It relies on net/http for
// path cleaning, MIME types and conditional requests.
type Engine struct {
	fs    afero.Fs
	files http.Handler
	opts  Options
}

// New returns an engine serving fsys. Names are resolved from fsys's root.
func New(fsys afero.Fs, opts Options) *Engine {
	return &Engine{
		fs:    fsys,
		files: http.FileServer(afero.NewHttpFs(fsys)),
		opts:  opts,
	}
}

// NewOS returns an engine serving the directory root on the local disk.
// It fails if root does not exist or is not a directory.
func NewOS(root string, opts Options) (*Engine, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot serve %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot serve %s: not a directory", absRoot)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), absRoot), opts), nil
}

// Serve resolves the request path under the root and serves it.
func (e *Engine) Serve(w http.ResponseWriter, r *http.Request) pipeline.Outcome {
	if f, ok := checkMethod(w, r); !ok {
		return f
	}

	if !e.opts.Listing {
		name := path.Clean("/" + r.URL.Path)
		if e.isDir(name) && !e.Exists(path.Join(name, "index.html")) {
			f := pipeline.Failure{Status: http.StatusNotFound, Reason: "Directory listing disabled"}
			pipeline.WriteFailure(w, f)
			return f
		}
	}

	c := &capture{}
	e.files.ServeHTTP(c.wrap(w), r)
	return c.outcome()
}

// ServeFile serves the named file regardless of the request path. Unlike
// http.ServeFile it never redirects requests for index.html.
func (e *Engine) ServeFile(w http.ResponseWriter, r *http.Request, name string) pipeline.Outcome {
	if f, ok := checkMethod(w, r); !ok {
		return f
	}

	file, err := e.fs.Open(name)
	if err != nil {
		f := failureFor(err)
		pipeline.WriteFailure(w, f)
		return f
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		f := failureFor(err)
		pipeline.WriteFailure(w, f)
		return f
	}
	if info.IsDir() {
		f := pipeline.Failure{Status: http.StatusNotFound, Reason: name + " is a directory"}
		pipeline.WriteFailure(w, f)
		return f
	}

	c := &capture{}
	http.ServeContent(c.wrap(w), r, info.Name(), info.ModTime(), file)
	return c.outcome()
}

// Exists reports whether name is a file that can be opened.
func (e *Engine) Exists(name string) bool {
	info, err := e.fs.Stat(name)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := e.fs.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// IndexTitle returns the <title> of an HTML document, or "" if name is not
// HTML, cannot be read or has no title.
func (e *Engine) IndexTitle(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext != ".html" && ext != ".htm" {
		return ""
	}
	f, err := e.fs.Open(name)
	if err != nil {
		return ""
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (e *Engine) isDir(name string) bool {
	info, err := e.fs.Stat(name)
	return err == nil && info.IsDir()
}

// checkMethod only lets GET and HEAD through.
func checkMethod(w http.ResponseWriter, r *http.Request) (pipeline.Failure, bool) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return pipeline.Failure{}, true
	}
	w.Header().Set("Allow", "GET, HEAD")
	f := pipeline.Failure{Status: http.StatusMethodNotAllowed, Reason: "Method Not Allowed"}
	pipeline.WriteFailure(w, f)
	return f, false
}

func failureFor(err error) pipeline.Failure {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return pipeline.Failure{Status: http.StatusNotFound, Reason: "404 page not found"}
	case errors.Is(err, fs.ErrPermission):
		return pipeline.Failure{Status: http.StatusForbidden, Reason: "403 Forbidden"}
	default:
		return pipeline.Failure{Status: http.StatusInternalServerError, Reason: err.Error()}
	}
}
