// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects the log level and outputs.
type Options struct {
	Level  string // debug, info, warn or error; empty means info
	Pretty bool   // human-readable console output instead of JSON
	File   string // also append JSON lines to this file
	// Writer replaces stderr as the console output.
	Writer io.Writer
}

// Setup installs the global logger. The returned function closes the log
// file, if any.
func Setup(opts Options) (func() error, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	var console io.Writer = os.Stderr
	if opts.Writer != nil {
		console = opts.Writer
	}
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}
	}

	closeFn := func() error { return nil }
	out := console
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = zerolog.MultiLevelWriter(console, f)
		closeFn = f.Close
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return closeFn, nil
}
