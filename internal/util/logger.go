package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogOptions controls NewLogger
type LogOptions struct {
	File    string // appended to in addition to stdout; empty means stdout only
	Level   string // DEBUG, INFO, WARNING, ERROR
	Verbose bool   // forces debug level
}

// NewLogger builds the process logger. Output goes to stdout and, when the log file
// can be opened, to the file as well. A file that cannot be opened is reported as a
// warning on stdout and is not fatal.
func NewLogger(opts LogOptions) (*logrus.Logger, io.Closer) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(ParseLevel(opts.Level))
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if opts.File == "" {
		return logger, nopCloser{}
	}

	f, err := openLogFile(opts.File)
	if err != nil {
		logger.Warnf("Failed to open log file %s, logging to stdout only: %v", opts.File, err)
		return logger, nopCloser{}
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return logger, f
}

// ParseLevel maps a level name to a logrus level, defaulting to info
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "WARNING":
		return logrus.WarnLevel
	case "CRITICAL":
		return logrus.FatalLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
