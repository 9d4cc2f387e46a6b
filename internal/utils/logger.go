package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger writes prefixed lines to a log file and mirrors them to stderr.
type Logger struct {
	file   *os.File
	logger *log.Logger
}

// NewLogger creates a logger appending to dir/file, creating dir if needed.
func NewLogger(dir, file string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, file), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{
		file:   f,
		logger: log.New(io.MultiWriter(f, os.Stderr), "", log.LstdFlags),
	}, nil
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.logger.SetPrefix("INFO: ")
	l.logger.Printf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.logger.SetPrefix("WARN: ")
	l.logger.Printf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.logger.SetPrefix("ERROR: ")
	l.logger.Printf(format, args...)
}

// Close closes the log file.
func (l *Logger) Close() {
	l.file.Close()
}
