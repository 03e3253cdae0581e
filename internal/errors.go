package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when the user submits an empty line
	ErrEmptyInput = errors.New("input cannot be empty")
	// ErrInputTooLong is returned when a line exceeds MaxInputLength characters
	ErrInputTooLong = errors.New("input too long")
)

// TransportError represents a failed outbound HTTP exchange
type TransportError struct {
	Op  string // "build", "send", "read"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid or unreadable configuration
type ConfigError struct {
	Path  string
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error [%s] %s: %v", e.Field, e.Path, e.Err)
	}
	return fmt.Sprintf("config error %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ArchiveError represents errors writing the turn archive
type ArchiveError struct {
	Path string
	Op   string // "open", "migrate", "insert", "close"
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during transcript export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
