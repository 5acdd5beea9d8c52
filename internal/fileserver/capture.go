package fileserver

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"

	"github.com/f4ah6o/serve-go/internal/pipeline"
)

// maxReasonBytes caps how much of an error body is kept as the failure reason.
const maxReasonBytes = 256

// capture records what a net/http handler sends so it can be turned into an
// Outcome afterwards.
type capture struct {
	status      int
	contentType string
	bytes       int64
	errBody     bytes.Buffer
}

func (c *capture) wrap(w http.ResponseWriter) http.ResponseWriter {
	return httpsnoop.Wrap(w, httpsnoop.Hooks{
		WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
			return func(code int) {
				c.header(w, code)
				next(code)
			}
		},
		Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
			return func(p []byte) (int, error) {
				c.header(w, http.StatusOK)
				n, err := next(p)
				c.bytes += int64(n)
				if c.status >= 400 {
					if room := maxReasonBytes - c.errBody.Len(); room > 0 {
						c.errBody.Write(p[:min(n, room)])
					}
				}
				return n, err
			}
		},
		ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
			return func(src io.Reader) (int64, error) {
				c.header(w, http.StatusOK)
				n, err := next(src)
				c.bytes += n
				return n, err
			}
		},
	})
}

// header keeps the first final status code and the content type sent with it.
func (c *capture) header(w http.ResponseWriter, code int) {
	if c.status != 0 || code < 200 {
		return
	}
	c.status = code
	c.contentType = w.Header().Get("Content-Type")
}

func (c *capture) outcome() pipeline.Outcome {
	status := c.status
	if status == 0 {
		status = http.StatusOK
	}
	if status >= 400 {
		return pipeline.Failure{Status: status, Reason: reasonFrom(c.errBody.String(), status)}
	}
	return pipeline.Success{Status: status, ContentType: c.contentType, Bytes: c.bytes}
}

// reasonFrom returns the first non-empty line of an error body, or the
// standard status text.
func reasonFrom(body string, status int) string {
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}
