package accesslog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Level is the verbosity filter applied to access log records.
type Level int

const (
	// LevelNone disables access logging entirely.
	LevelNone Level = iota
	// LevelError logs failed requests only.
	LevelError
	// LevelAll logs every request.
	LevelAll
)

var levelNames = map[Level]string{
	LevelNone:  "none",
	LevelError: "error",
	LevelAll:   "all",
}

// ParseLevel parses a level name. Matching ignores case and surrounding spaces.
func ParseLevel(s string) (Level, error) {
	folded := cases.Fold().String(strings.TrimSpace(s))
	for lvl, name := range levelNames {
		if folded == name {
			return lvl, nil
		}
	}
	return LevelNone, fmt.Errorf("unknown log level %q (want none, error or all)", s)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Allows reports whether a record with the given outcome passes the filter.
func (l Level) Allows(failed bool) bool {
	switch l {
	case LevelAll:
		return true
	case LevelError:
		return failed
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if _, ok := levelNames[l]; !ok {
		return nil, fmt.Errorf("invalid log level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so that config files can
// spell levels by name.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Set and the String method above let a *Level be used as a flag.Value.
func (l *Level) Set(s string) error {
	return l.UnmarshalText([]byte(s))
}
