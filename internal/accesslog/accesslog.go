// Package accesslog formats and filters one line per completed HTTP request.
package accesslog

import (
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Record describes a completed request. Reason is empty for successful
// requests and set for failed ones.
type Record struct {
	Method  string
	Path    string
	Status  int
	Elapsed time.Duration
	Reason  string
}

// Failed reports whether the record describes a failed request.
func (r Record) Failed() bool {
	return r.Reason != "" || r.Status >= 400
}

// Sink receives formatted log lines, without trailing newline.
type Sink interface {
	WriteLine(line string) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(line string) error

// WriteLine calls f(line).
func (f SinkFunc) WriteLine(line string) error {
	return f(line)
}

type writerSink struct {
	w io.Writer
}

// WriterSink returns a Sink writing each line, newline included, with a single
// Write call on w. Lines from concurrent requests are only as atomic as w
// makes single writes.
func WriterSink(w io.Writer) Sink {
	return writerSink{w: w}
}

func (s writerSink) WriteLine(line string) error {
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Logger emits records that pass its level to a sink.
type Logger struct {
	sink    Sink
	level   Level
	dropped atomic.Int64
}

// New creates a Logger. A nil sink discards everything.
func New(sink Sink, level Level) *Logger {
	return &Logger{sink: sink, level: level}
}

// Level returns the configured level.
func (l *Logger) Level() Level {
	return l.level
}

// Log formats rec and writes it if the level allows. Write errors are not
// returned; they only increment the drop counter.
func (l *Logger) Log(rec Record) {
	if l == nil || l.sink == nil || !l.level.Allows(rec.Failed()) {
		return
	}
	if err := l.sink.WriteLine(Format(rec)); err != nil {
		l.dropped.Add(1)
	}
}

// Dropped returns how many lines the sink failed to accept.
func (l *Logger) Dropped() int64 {
	return l.dropped.Load()
}

// Format renders a record as
//
//	<METHOD> <PATH> <STATUS> <ELAPSED>
//
// with " <REASON>" appended for failed requests.
func Format(rec Record) string {
	var b strings.Builder
	b.WriteString(rec.Method)
	b.WriteByte(' ')
	b.WriteString(rec.Path)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(rec.Status))
	b.WriteByte(' ')
	b.WriteString(FormatElapsed(rec.Elapsed))
	if rec.Reason != "" {
		b.WriteByte(' ')
		b.WriteString(rec.Reason)
	}
	return b.String()
}

// FormatElapsed renders d with about three significant digits, e.g. "12.4ms".
// Negative durations render as "0s".
func FormatElapsed(d time.Duration) string {
	switch {
	case d < 0:
		d = 0
	case d >= time.Second:
		d = d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		d = d.Round(100 * time.Microsecond)
	case d >= time.Microsecond:
		d = d.Round(100 * time.Nanosecond)
	}
	return d.String()
}
