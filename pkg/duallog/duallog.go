package duallog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var (
	stderrLogger = zerolog.Nop()
)

// Options controls where and how logs are written
type Options struct {
	// Console renders human-readable output instead of JSON
	Console bool
	// Stdout and Stderr default to os.Stdout and os.Stderr
	Stdout io.Writer
	Stderr io.Writer
}

// Setup configures the dual logging system:
// - All logs go to STDOUT (complete log)
// - Progress and per-target outcomes also go to STDERR
func Setup(level zerolog.Level, opts Options) {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if opts.Console {
		stdout = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.Kitchen}
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zerolog.New(stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)

	stderrLogger = zerolog.New(stderr).With().Timestamp().Logger()
}

// Progress logs a progress message ONLY to STDERR
func Progress() *zerolog.Event {
	return stderrLogger.Info()
}

// Reachable logs a successful connection to BOTH STDOUT and STDERR
func Reachable() *DualEvent {
	return &DualEvent{
		stdout: zlog.Info(),
		stderr: stderrLogger.Info(),
	}
}

// Unreachable logs a failed connection to BOTH STDOUT and STDERR
func Unreachable() *DualEvent {
	return &DualEvent{
		stdout: zlog.Warn(),
		stderr: stderrLogger.Warn(),
	}
}

// DualEvent represents an event that writes to both STDOUT and STDERR
type DualEvent struct {
	stdout *zerolog.Event
	stderr *zerolog.Event
}

// Str adds a string field to both events
func (d *DualEvent) Str(key, val string) *DualEvent {
	d.stdout.Str(key, val)
	d.stderr.Str(key, val)
	return d
}

// Int adds an int field to both events
func (d *DualEvent) Int(key string, val int) *DualEvent {
	d.stdout.Int(key, val)
	d.stderr.Int(key, val)
	return d
}

// Dur adds a duration field to both events
func (d *DualEvent) Dur(key string, val time.Duration) *DualEvent {
	d.stdout.Dur(key, val)
	d.stderr.Dur(key, val)
	return d
}

// Err adds the error to both events
func (d *DualEvent) Err(err error) *DualEvent {
	d.stdout.Err(err)
	d.stderr.Err(err)
	return d
}

// Msg sends the message to both STDOUT and STDERR
func (d *DualEvent) Msg(msg string) {
	d.stdout.Msg(msg)
	d.stderr.Msg(msg)
}

// Msgf sends a formatted message to both STDOUT and STDERR
func (d *DualEvent) Msgf(format string, v ...interface{}) {
	d.stdout.Msgf(format, v...)
	d.stderr.Msgf(format, v...)
}
