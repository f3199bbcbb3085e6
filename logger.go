// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the pluggable logger used across the library

package faucet

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Logger is a pluggable logging interface.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...any)

	// Info logs informational messages about normal operations.
	Info(format string, args ...any)

	// Error logs error messages.
	Error(format string, args ...any)
}

// ConsoleLogger writes log messages to stderr.
type ConsoleLogger struct {
	verbose bool
	mu      sync.Mutex
}

// NewConsoleLogger returns a logger writing to stderr.
// When verbose is false, Verbose() calls are no-ops.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled
func (l *ConsoleLogger) Verbose(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[VERBOSE] "+format+"\n", args...)
}

// Info logs informational messages about normal operations
func (l *ConsoleLogger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Error logs error messages
func (l *ConsoleLogger) Error(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}

// NopLogger discards all log messages
type NopLogger struct{}

// Verbose is a no-op
func (NopLogger) Verbose(format string, args ...any) {}

// Info is a no-op
func (NopLogger) Info(format string, args ...any) {}

// Error is a no-op
func (NopLogger) Error(format string, args ...any) {}

// slogLogger adapts a *slog.Logger to the Logger interface.
// Verbose maps to the debug level.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger returns a Logger backed by the given slog logger.
// When l is nil the process default slog logger is used.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Verbose(format string, args ...any) {
	s.l.Debug(fmt.Sprintf(format, args...))
}

func (s *slogLogger) Info(format string, args ...any) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s *slogLogger) Error(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}
