// Package logging builds the zerolog logger used by the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/config"
)

// levelRouter sends error and worse to stderr and everything else to
// stdout. Every line also goes to file, as JSON, when one is set.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
	file   io.Writer
}

func (r levelRouter) Write(p []byte) (int, error) {
	return r.WriteLevel(zerolog.NoLevel, p)
}

func (r levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	out := r.stdout
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		out = r.stderr
	}
	if _, err := out.Write(p); err != nil {
		return 0, err
	}
	if r.file != nil {
		if _, err := r.file.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Setup returns a logger configured by cfg writing to stdout and stderr,
// and a function that closes the log file if one was opened.
func Setup(cfg config.LogConfig, stdout, stderr io.Writer) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	r := levelRouter{stdout: stdout, stderr: stderr}
	if cfg.Format == "console" {
		r.stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.DateTime, NoColor: true}
		r.stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.DateTime, NoColor: true}
	}

	cleanup := func() {}
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		r.file = f
		cleanup = func() { f.Close() }
	}

	log := zerolog.New(r).Level(level).With().Timestamp().Logger()
	return log, cleanup, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
