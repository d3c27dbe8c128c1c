package parser_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/breakguard/breakguard/internal/adapters/outbound/parser"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	name  string
	syms  []string
	err   error
	calls int
}

func (s *stubParser) Name() string { return s.name }

func (s *stubParser) Symbols(context.Context, string, []byte) ([]string, error) {
	s.calls++
	return s.syms, s.err
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestExtractor_PrimarySucceeds(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", []byte("useState(0)"))
	primary := &stubParser{name: "structural", syms: []string{"useState"}}
	fallback := &stubParser{name: "lexical"}

	e := parser.NewExtractor(primary, parser.WithFallback(fallback))
	syms, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"useState"}, syms)
	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, "structural", e.Mode())
}

func TestExtractor_ParseErrorFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.jsx", []byte("ReactDOM.render(<App/>, el"))
	primary := &stubParser{name: "structural", err: &domain.ParseError{Path: path, Grammar: "javascript", Err: errors.New("boom")}}

	e := parser.NewExtractor(primary, parser.WithFallback(parser.NewLexical(domain.DefaultCatalog())))
	syms, err := e.Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"ReactDOM.render"}, syms)
}

func TestExtractor_UnavailableFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", []byte("useRef()"))
	primary := &stubParser{name: "structural", err: domain.ErrStructuralUnavailable}
	fallback := &stubParser{name: "lexical", syms: []string{"useRef"}}

	syms, err := parser.NewExtractor(primary, parser.WithFallback(fallback)).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"useRef"}, syms)
}

func TestExtractor_FallbackFailureIsFileError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", []byte("x"))
	primary := &stubParser{name: "structural", err: &domain.ParseError{Path: path, Err: errors.New("bad")}}
	fallback := &stubParser{name: "lexical", err: errors.New("also bad")}

	_, err := parser.NewExtractor(primary, parser.WithFallback(fallback)).Extract(context.Background(), path)

	var fe *domain.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
	assert.Contains(t, err.Error(), "also bad")
}

func TestExtractor_OtherErrorsDoNotFallBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", []byte("x"))
	primary := &stubParser{name: "structural", err: errors.New("unexpected")}
	fallback := &stubParser{name: "lexical"}

	_, err := parser.NewExtractor(primary, parser.WithFallback(fallback)).Extract(context.Background(), path)

	var fe *domain.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 0, fallback.calls)
}

func TestExtractor_ReadFailures(t *testing.T) {
	dir := t.TempDir()
	e := parser.NewExtractor(parser.NewLexical(domain.DefaultCatalog()), parser.WithMaxFileBytes(16))

	tests := []struct {
		name   string
		path   string
		reason string
	}{
		{"missing", filepath.Join(dir, "missing.js"), "cannot open"},
		{"too large", writeFile(t, dir, "big.js", []byte("useState(0); useEffect(() => {});")), "exceeds 16 bytes"},
		{"not utf-8", writeFile(t, dir, "bin.js", []byte{0xff, 0xfe, 'u', 's', 'e'}), "not valid UTF-8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), tt.path)
			var fe *domain.FileError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Reason, tt.reason)
		})
	}
}

func TestExtractor_Cancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.js", []byte("useState(0)"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := parser.NewExtractor(parser.NewLexical(domain.DefaultCatalog())).Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_LexicalMode(t *testing.T) {
	e, err := parser.New(domain.ExtractorLexical, domain.DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, parser.LexicalName, e.Mode())

	_, err = parser.New(domain.ExtractorMode("fancy"), domain.DefaultCatalog())
	assert.Error(t, err)
}

func TestNew_AutoAlwaysWorks(t *testing.T) {
	e, err := parser.New(domain.ExtractorAuto, domain.DefaultCatalog())
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "index.js", []byte("ReactDOM.render(<App />, document.getElementById('root'));\n"))
	syms, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ReactDOM.render"}, syms)
}
