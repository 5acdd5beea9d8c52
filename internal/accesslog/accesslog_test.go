package accesslog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type memorySink struct {
	lines []string
}

func (s *memorySink) WriteLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "Success",
			rec:  Record{Method: "GET", Path: "/index.html", Status: 200, Elapsed: 12412 * time.Microsecond},
			want: "GET /index.html 200 12.4ms",
		},
		{
			name: "Failure with reason",
			rec:  Record{Method: "GET", Path: "/missing.txt", Status: 404, Elapsed: 850 * time.Microsecond, Reason: "404 page not found"},
			want: "GET /missing.txt 404 850µs 404 page not found",
		},
		{
			name: "Negative elapsed",
			rec:  Record{Method: "HEAD", Path: "/", Status: 200, Elapsed: -time.Second},
			want: "HEAD / 200 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.rec); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{750 * time.Nanosecond, "750ns"},
		{1234 * time.Nanosecond, "1.2µs"},
		{12412 * time.Microsecond, "12.4ms"},
		{1234567 * time.Microsecond, "1.23s"},
		{90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatElapsed(tt.in); got != tt.want {
				t.Errorf("FormatElapsed(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatElapsedMonotonic(t *testing.T) {
	prev := time.Duration(-1)
	for d := time.Duration(0); d < 3*time.Second; d += 7919 * time.Nanosecond {
		parsed, err := time.ParseDuration(FormatElapsed(d))
		if err != nil {
			t.Fatalf("FormatElapsed(%v) is not a duration: %v", d, err)
		}
		if parsed < prev {
			t.Fatalf("FormatElapsed(%v) = %v, smaller than previous %v", d, parsed, prev)
		}
		prev = parsed
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "none", want: LevelNone},
		{in: "error", want: LevelError},
		{in: "all", want: LevelAll},
		{in: " ALL ", want: LevelAll},
		{in: "Error", want: LevelError},
		{in: "debug", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLevelAllows(t *testing.T) {
	tests := []struct {
		level       Level
		wantSuccess bool
		wantFailure bool
	}{
		{LevelNone, false, false},
		{LevelError, false, true},
		{LevelAll, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.Allows(false); got != tt.wantSuccess {
				t.Errorf("Allows(success) = %v, want %v", got, tt.wantSuccess)
			}
			if got := tt.level.Allows(true); got != tt.wantFailure {
				t.Errorf("Allows(failure) = %v, want %v", got, tt.wantFailure)
			}
		})
	}
}

func TestLoggerFilters(t *testing.T) {
	ok := Record{Method: "GET", Path: "/a", Status: 200, Elapsed: time.Millisecond}
	notFound := Record{Method: "GET", Path: "/b", Status: 404, Elapsed: time.Millisecond, Reason: "not found"}

	tests := []struct {
		level Level
		want  []string
	}{
		{LevelNone, nil},
		{LevelError, []string{"GET /b 404 1ms not found"}},
		{LevelAll, []string{"GET /a 200 1ms", "GET /b 404 1ms not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			sink := &memorySink{}
			l := New(sink, tt.level)
			l.Log(ok)
			l.Log(notFound)
			if diff := cmp.Diff(tt.want, sink.lines); diff != "" {
				t.Errorf("logged lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoggerSwallowsSinkErrors(t *testing.T) {
	l := New(SinkFunc(func(string) error { return errors.New("broken pipe") }), LevelAll)
	l.Log(Record{Method: "GET", Path: "/", Status: 200})
	l.Log(Record{Method: "GET", Path: "/x", Status: 404, Reason: "gone"})
	if got := l.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(WriterSink(&buf), LevelAll)
	l.Log(Record{Method: "GET", Path: "/", Status: 200, Elapsed: 3 * time.Millisecond})
	if got, want := buf.String(), "GET / 200 3ms\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.Log(Record{Method: "GET", Path: "/", Status: 200})
}
