// Package parser implements the syntax extractor: a structural tree-sitter
// parser, a lexical fallback, and the location resolver.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/logging"
)

// Extractor implements domain.SymbolExtractor. The primary parser runs first;
// parse failures are retried once with the fallback.
type Extractor struct {
	primary  domain.SymbolParser
	fallback domain.SymbolParser
	maxBytes int64
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback sets the parser used when the primary reports a parse failure.
func WithFallback(p domain.SymbolParser) Option {
	return func(e *Extractor) { e.fallback = p }
}

// WithMaxFileBytes rejects files larger than n bytes. Zero disables the limit.
func WithMaxFileBytes(n int64) Option {
	return func(e *Extractor) { e.maxBytes = n }
}

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor wraps primary. Without WithFallback, parse failures are
// returned as *domain.FileError.
func NewExtractor(primary domain.SymbolParser, opts ...Option) *Extractor {
	e := &Extractor{
		primary:  primary,
		maxBytes: domain.DefaultMaxFileBytes,
		logger:   logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New selects parsers for mode and builds an Extractor around them.
func New(mode domain.ExtractorMode, catalog *domain.Catalog, opts ...Option) (*Extractor, error) {
	e := NewExtractor(nil, opts...)
	primary, fallback, err := Select(mode, catalog, e.logger)
	if err != nil {
		return nil, err
	}
	e.primary = primary
	if fallback != nil {
		e.fallback = fallback
	}
	return e, nil
}

// Mode returns the name of the primary parser.
func (e *Extractor) Mode() string { return e.primary.Name() }

// Extract reads filePath and returns its sorted canonical symbols.
func (e *Extractor) Extract(ctx context.Context, filePath string) ([]string, error) {
	src, err := e.ReadSource(filePath)
	if err != nil {
		return nil, err
	}
	return e.ExtractSource(ctx, filePath, src)
}

// ReadSource reads filePath, enforcing the size limit and UTF-8 encoding.
// Every failure is a *domain.FileError.
func (e *Extractor) ReadSource(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, &domain.FileError{Path: filePath, Reason: "cannot open", Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if e.maxBytes > 0 {
		r = io.LimitReader(f, e.maxBytes+1)
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.FileError{Path: filePath, Reason: "cannot read", Err: err}
	}
	if e.maxBytes > 0 && int64(len(src)) > e.maxBytes {
		return nil, &domain.FileError{Path: filePath, Reason: fmt.Sprintf("file exceeds %d bytes", e.maxBytes)}
	}
	if !utf8.Valid(src) {
		return nil, &domain.FileError{Path: filePath, Reason: "not valid UTF-8"}
	}
	return src, nil
}

// ExtractSource runs the primary parser over src, falling back on a parse
// failure. Cancellation is returned as ctx.Err(); other failures are
// *domain.FileError.
func (e *Extractor) ExtractSource(ctx context.Context, filePath string, src []byte) ([]string, error) {
	syms, err := e.primary.Symbols(ctx, filePath, src)
	if err == nil {
		return syms, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	if e.fallback == nil || !recoverable(err) {
		return nil, &domain.FileError{Path: filePath, Reason: e.primary.Name() + " extraction failed", Err: err}
	}

	e.logger.Debug("falling back to lexical extraction",
		"file", filePath, "parser", e.primary.Name(), "error", err)

	syms, ferr := e.fallback.Symbols(ctx, filePath, src)
	if ferr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.FileError{Path: filePath, Reason: "fallback extraction failed", Err: errors.Join(err, ferr)}
	}
	return syms, nil
}

func recoverable(err error) bool {
	var pe *domain.ParseError
	return errors.As(err, &pe) || errors.Is(err, domain.ErrStructuralUnavailable)
}
