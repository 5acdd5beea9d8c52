// Package config builds the immutable server configuration from command-line
// arguments and an optional TOML or YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/serve-go/internal/accesslog"
)

const (
	DefaultPort  = 8080
	DefaultHost  = "localhost"
	DefaultRoot  = "."
	DefaultIndex = "index.html"
)

// ErrInvalid is wrapped by every validation and usage error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings shared by the router, the logging middleware and
// the server. It is built once at startup and only read afterwards.
type Config struct {
	// Port is the TCP port to listen on, 1-65535.
	Port int `toml:"port" yaml:"port"`
	// Host is the interface name or address to bind.
	Host string `toml:"host" yaml:"host"`
	// Root is the directory whose files are served.
	Root string `toml:"root" yaml:"root"`
	// LogLevel filters access log lines.
	LogLevel accesslog.Level `toml:"loglevel" yaml:"loglevel"`
	// Index is the document served for "/".
	Index string `toml:"index" yaml:"index"`
	// IndexFallback serves "/" from the static route when Index is missing.
	IndexFallback bool `toml:"index_fallback" yaml:"index_fallback"`
	// Listing enables directory listings.
	Listing bool `toml:"listing" yaml:"listing"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Port:          DefaultPort,
		Host:          DefaultHost,
		Root:          DefaultRoot,
		LogLevel:      accesslog.LevelAll,
		Index:         DefaultIndex,
		IndexFallback: true,
		Listing:       true,
	}
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the base URL a browser can use to reach the server.
func (c Config) URL() string {
	return "http://" + c.Addr() + "/"
}

// Validate checks value ranges. It does not touch the filesystem.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range 1-65535", ErrInvalid, c.Port)
	}
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalid)
	}
	if c.Root == "" {
		return fmt.Errorf("%w: root directory must not be empty", ErrInvalid)
	}
	if _, err := c.LogLevel.MarshalText(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Index == "" || strings.Contains(c.Index, "..") {
		return fmt.Errorf("%w: bad index document %q", ErrInvalid, c.Index)
	}
	return nil
}

// LoadFile reads path into cfg. The format follows the extension: .toml,
// .yaml or .yml. Keys missing from the file keep their current value, and a
// relative root is taken relative to the file's directory.
func LoadFile(path string, cfg *Config) error {
	root := cfg.Root
	cfg.Root = ""

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q (want .toml, .yaml or .yml)", ErrInvalid, ext)
	}

	switch {
	case cfg.Root == "":
		cfg.Root = root
	case !filepath.IsAbs(cfg.Root):
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return nil
}
