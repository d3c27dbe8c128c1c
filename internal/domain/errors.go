package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned when the project path does not exist.
	ErrPathNotFound = errors.New("path does not exist")

	// ErrStructuralUnavailable is returned when the structural parser cannot
	// be used in this build or environment.
	ErrStructuralUnavailable = errors.New("structural parser unavailable")
)

// FileError is a per-file read failure. Scans record it and keep going.
type FileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError means a structural parse failed for every grammar tried.
type ParseError struct {
	Path    string
	Grammar string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s as %s: %v", e.Path, e.Grammar, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError is a transport or backend failure from a MatchProvider.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("match provider %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("match provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
