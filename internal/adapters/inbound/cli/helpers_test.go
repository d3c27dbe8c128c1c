package cli_test

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/breakguard/breakguard/internal/adapters/inbound/cli"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../../../testdata/react-app"

type answer struct {
	Function   string  `json:"function"`
	Similarity float64 `json:"-"`
	Deprecated bool    `json:"deprecated,omitempty"`
	MigrateTo  string  `json:"migrateTo,omitempty"`
}

// fakeBackend serves both the embedding endpoint and the vector search.
// Each description is embedded as a one-element vector holding the index of
// its symbol, so the search handler knows which symbol is being asked about.
type fakeBackend struct {
	mu       sync.Mutex
	symbols  []string
	answers  map[string]answer
	searches int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{answers: map[string]answer{
		"ReactDOM.render":      {Function: "createRoot", Similarity: 0.42, Deprecated: true, MigrateTo: "createRoot"},
		"ReactDOM.findDOMNode": {Function: "useRef", Similarity: 0.61, Deprecated: true},
		"useEffect":            {Function: "useEffect", Similarity: 0.91},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/embed", b.embed)
	mux.HandleFunc("/api/v1/index/api_versions/search", b.search)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	t.Setenv("BREAKGUARD_PROVIDER_URL", srv.URL+"/api/v1")
	t.Setenv("BREAKGUARD_EMBEDDER_URL", srv.URL)
	return b
}

func (b *fakeBackend) embed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	vecs := make([][]float32, len(req.Input))
	for i, text := range req.Input {
		symbol, _, _ := strings.Cut(text, ":")
		vecs[i] = []float32{float32(len(b.symbols))}
		b.symbols = append(b.symbols, symbol)
	}
	b.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vecs})
}

func (b *fakeBackend) search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vector []float32 `json:"vector"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Vector) != 1 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.searches++
	symbol := b.symbols[int(req.Vector[0])]
	a, ok := b.answers[symbol]
	b.mu.Unlock()
	if !ok {
		a = answer{Function: symbol, Similarity: 0.98}
	}

	_ = json.NewEncoder(w).Encode([]map[string]any{{
		"id":         symbol,
		"similarity": a.Similarity,
		"meta":       a,
	}})
}

func (b *fakeBackend) searchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searches
}

// copyFixture copies the react fixture into a temp dir so commands that
// write .breakguard state leave testdata untouched.
func copyFixture(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	err := filepath.WalkDir(fixtureDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fixtureDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	require.NoError(t, err)
	return dst
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}
