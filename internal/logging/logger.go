package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Option configures a logger.
type Option func(*logrus.Logger)

// WithOutput sets the logger output
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithLevel sets the log level
func WithLevel(level logrus.Level) Option {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

// WithFormatter sets the log formatter
func WithFormatter(formatter logrus.Formatter) Option {
	return func(l *logrus.Logger) {
		l.SetFormatter(formatter)
	}
}

// WithFormat picks a formatter by name: "json" or "text".
func WithFormat(name string) Option {
	return func(l *logrus.Logger) {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "json":
			l.SetFormatter(&logrus.JSONFormatter{})
		default:
			l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		}
	}
}

// New creates a logger writing to stderr at info level, then applies opts.
// DOXNAV_LOG_LEVEL overrides the level unless an option sets it.
func New(opts ...Option) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(ParseLevel(os.Getenv("DOXNAV_LOG_LEVEL")))

	for _, opt := range opts {
		opt(logger)
	}
	return logger
}

// ParseLevel falls back to info for empty or unknown names.
func ParseLevel(name string) logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return New(WithOutput(io.Discard), WithLevel(logrus.PanicLevel))
}
