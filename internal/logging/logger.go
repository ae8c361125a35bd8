// Package logging builds the structured loggers shared by the diagram service,
// the HTTP surface and the threatforge commands.
//
// Logs always go to stderr. The graph, analyze and export commands write their
// results to stdout, so the two streams can be piped separately.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects how log records are encoded
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a config value to a Format; empty means text
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// New returns the editor logger on stderr
func New(level slog.Level, format Format) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter returns the editor logger writing to w. Service and handler
// code log failures under the "error" key; it is written as "err" in both
// formats so log queries do not depend on the format.
func NewWithWriter(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: shortenErrorKey,
	}
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func shortenErrorKey(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop is the default logger of services and watchers built without one
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
