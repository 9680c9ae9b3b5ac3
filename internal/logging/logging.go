// Package logging configures the structured logger shared by the server and CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format selects the log output encoding.
type Format string

// Supported log formats
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options controls logger construction.
type Options struct {
	Level  string
	Format Format
	Out    io.Writer
}

// New builds a logrus logger from options. Unknown levels fall back to info.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	logger.Out = opts.Out
	if logger.Out == nil {
		logger.Out = os.Stdout
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.Format == FormatText {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			PadLevelText:  true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// Component returns an entry tagged with the given component name.
func Component(logger logrus.FieldLogger, name string) *logrus.Entry {
	if logger == nil {
		logger = Discard()
	}
	return logger.WithField("component", name)
}

// Discard returns a logger that drops everything. Useful in tests and for optional collaborators.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}
