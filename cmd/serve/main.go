// Package main provides a simple static file server with access logging.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/f4ah6o/serve-go/internal/accesslog"
	"github.com/f4ah6o/serve-go/internal/config"
	"github.com/f4ah6o/serve-go/internal/fileserver"
	"github.com/f4ah6o/serve-go/internal/pipeline"
	"github.com/f4ah6o/serve-go/internal/router"
	"github.com/f4ah6o/serve-go/internal/server"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Parse(args, stdout)
	if errors.Is(err, config.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		fmt.Fprintln(stderr, "Run 'serve --help' for usage.")
		return exitUsage
	}

	engine, err := fileserver.NewOS(cfg.Root, fileserver.Options{Listing: cfg.Listing})
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	rt := router.New(engine, router.Options{Index: cfg.Index, IndexFallback: cfg.IndexFallback})

	access := accesslog.New(accesslog.WriterSink(stdout), cfg.LogLevel)
	handler := pipeline.Chain(rt, pipeline.Logging(access, pipeline.SystemClock{}))

	log := zerolog.New(zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
	srv := server.New(cfg.Addr(), pipeline.HTTPHandler(handler), log)

	ln, err := srv.Listen()
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}

	printBanner(stdout, cfg, engine.IndexTitle(rt.Index()))
	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return exitError
	}
	if n := access.Dropped(); n > 0 {
		log.Warn().Int64("lines", n).Msg("access log lines could not be written")
	}
	return exitOK
}

func printBanner(w io.Writer, cfg config.Config, title string) {
	absDir, err := filepath.Abs(cfg.Root)
	if err != nil {
		absDir = cfg.Root
	}

	bold := color.New(color.Bold)
	url := color.New(color.FgCyan, color.Underline)

	fmt.Fprintf(w, "🌐 Serving %s at %s\n", bold.Sprint(absDir), url.Sprint(cfg.URL()))
	if title != "" {
		fmt.Fprintf(w, "   Index: %s\n", title)
	}
	fmt.Fprintf(w, "   Access log level: %s\n", cfg.LogLevel)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
}
