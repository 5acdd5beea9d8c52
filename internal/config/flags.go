package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// ErrHelp is returned by Parse after usage has been printed on request.
var ErrHelp = flag.ErrHelp

// Parse builds a Config from command-line arguments (without the program
// name). Options and the DIR argument may appear in any order. If --config
// names a file, its values replace the defaults and explicit flags replace
// the file's values.
//
// A bare -h with no value, -help and --help print usage to out and return
// ErrHelp; -h NAME sets the host.
func Parse(args []string, out io.Writer) (Config, error) {
	args = rewriteHelp(args)

	// The first pass only looks for --config.
	probe := Default()
	var cfgPath string
	fs := newFlagSet(&probe, &cfgPath)
	if _, err := parseInterleaved(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, fs)
			return Config{}, ErrHelp
		}
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg := Default()
	if cfgPath != "" {
		if err := LoadFile(cfgPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs = newFlagSet(&cfg, &cfgPath)
	positional, err := parseInterleaved(fs, args)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch len(positional) {
	case 0:
	case 1:
		cfg.Root = positional[0]
	default:
		return Config{}, fmt.Errorf("%w: expected at most one directory, got %q", ErrInvalid, positional)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Usage writes the help text to w.
func Usage(w io.Writer) {
	cfg := Default()
	var cfgPath string
	printUsage(w, newFlagSet(&cfg, &cfgPath))
}

func newFlagSet(cfg *Config, cfgPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "Port to serve on")
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Shorthand for --port")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Host name or address to bind")
	fs.StringVar(&cfg.Host, "h", cfg.Host, "Shorthand for --host")
	fs.Var(&cfg.LogLevel, "loglevel", "Access log level: none, error or all")
	fs.StringVar(&cfg.Index, "index", cfg.Index, "Index document served for /")
	fs.BoolFunc("no-listing", "Disable directory listings", func(string) error {
		cfg.Listing = false
		return nil
	})
	fs.BoolFunc("no-index-fallback", "Answer 404 for / when the index document is missing", func(string) error {
		cfg.IndexFallback = false
		return nil
	})
	fs.StringVar(cfgPath, "config", *cfgPath, "TOML or YAML config `file`")
	return fs
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: serve [options] [DIR]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serves the files under DIR (default: current directory) over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

// parseInterleaved parses flags that may be mixed with positional arguments.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		// Everything after "--" is positional.
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// rewriteHelp turns a bare -h, one that is last or followed by another
// option, into -help. Anything else after -h is a host name.
func rewriteHelp(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, a := range out {
		if a == "--" {
			break
		}
		if a != "-h" && a != "--h" {
			continue
		}
		if i == len(out)-1 || strings.HasPrefix(out[i+1], "-") {
			out[i] = "-help"
		}
	}
	return out
}
