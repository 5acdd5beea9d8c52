package pipeline

import (
	"net/http"
	"time"

	"github.com/f4ah6o/serve-go/internal/accesslog"
)

// Logging returns a middleware that times the rest of the chain and hands one
// record per request to logger. Both successes and failures are observed; the
// logger's level decides what is written. The outcome is returned unchanged.
func Logging(logger *accesslog.Logger, clock Clock) Middleware {
	if clock == nil {
		clock = SystemClock{}
	}
	return func(next Handler) Handler {
		return HandlerFunc(func(w http.ResponseWriter, r *http.Request) Outcome {
			method, path := r.Method, r.URL.Path

			start := clock.Now()
			out := next.Serve(w, r)
			elapsed := clock.Now().Sub(start)
			if elapsed < 0 {
				elapsed = 0
			}

			logger.Log(recordFor(method, path, elapsed, out))
			return out
		})
	}
}

func recordFor(method, path string, elapsed time.Duration, out Outcome) accesslog.Record {
	rec := accesslog.Record{Method: method, Path: path, Elapsed: elapsed}
	switch o := out.(type) {
	case Success:
		rec.Status = o.Status
	case Failure:
		rec.Status = o.Status
		rec.Reason = o.reason()
	case nil:
		// A handler that reports nothing is treated as a failure so the
		// request still shows up at error level.
		rec.Status = http.StatusInternalServerError
		rec.Reason = "no outcome"
	}
	return rec
}
