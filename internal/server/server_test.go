package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/f4ah6o/serve-go/internal/accesslog"
	"github.com/f4ah6o/serve-go/internal/fileserver"
	"github.com/f4ah6o/serve-go/internal/pipeline"
	"github.com/f4ah6o/serve-go/internal/router"
)

type chanSink struct {
	ch chan string
}

func (b *chanSink) WriteLine(line string) error {
	b.ch <- line
	return nil
}

func TestServeAndShutdown(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/index.html", []byte("<title>t</title>home"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := &chanSink{ch: make(chan string, 4)}
	h := pipeline.Chain(
		router.New(fileserver.New(fsys, fileserver.Options{Listing: true}), router.Options{IndexFallback: true}),
		pipeline.Logging(accesslog.New(sink, accesslog.LevelAll), nil),
	)

	var lifecycle bytes.Buffer
	s := New("127.0.0.1:0", pipeline.HTTPHandler(h), zerolog.New(&lifecycle))
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	for _, tc := range []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, "home"},
		{"/missing.txt", http.StatusNotFound, "404 page not found"},
	} {
		resp, err := http.Get(base + tc.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tc.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != tc.code || !strings.Contains(string(body), tc.body) {
			t.Errorf("GET %s = %d %q, want %d containing %q", tc.path, resp.StatusCode, body, tc.code, tc.body)
		}
	}

	var lines []string
	for len(lines) < 2 {
		select {
		case line := <-sink.ch:
			lines = append(lines, line)
		case <-time.After(5 * time.Second):
			t.Fatalf("got log lines %q, want 2", lines)
		}
	}
	sort.Strings(lines)
	for i, prefix := range []string{"GET / 200 ", "GET /missing.txt 404 "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("log line %q, want prefix %q", lines[i], prefix)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v, want nil after shutdown", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if !strings.Contains(lifecycle.String(), "shutting down") {
		t.Errorf("lifecycle log %q lacks shutdown event", lifecycle.String())
	}
}

func TestListenAddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer taken.Close()

	s := New(taken.Addr().String(), http.NotFoundHandler(), zerolog.Nop())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() on a taken port succeeded, want bind error")
	}
}
