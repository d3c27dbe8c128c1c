// Package matchprovider queries a vector index of versioned API descriptions.
package matchprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/logging"
)

// Endee is a MatchProvider backed by an Endee vector index. Descriptions are
// embedded first, then searched with a library/version metadata filter.
type Endee struct {
	client   *http.Client
	baseURL  string
	index    string
	token    string
	embedder domain.Embedder
	logger   *slog.Logger
}

// Option configures an Endee provider.
type Option func(*Endee)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Endee) {
		if c != nil {
			e.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Endee) { e.logger = logging.OrDiscard(l) }
}

// NewEndee creates a provider for cfg. The embedder must produce vectors of
// the dimension the index was built with.
func NewEndee(cfg domain.ProviderConfig, embedder domain.Embedder, opts ...Option) *Endee {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		base = domain.DefaultProviderURL
	}
	index := cfg.Index
	if index == "" {
		index = domain.DefaultProviderIndex
	}
	e := &Endee{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  base,
		index:    index,
		token:    cfg.AuthToken,
		embedder: embedder,
		logger:   logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type searchRequest struct {
	Vector         []float32        `json:"vector"`
	K              int              `json:"k"`
	Filter         []map[string]any `json:"filter,omitempty"`
	IncludeVectors bool             `json:"include_vectors"`
}

type searchHit struct {
	ID         string         `json:"id"`
	Similarity float64        `json:"similarity"`
	Meta       map[string]any `json:"meta"`
}

// Query embeds text and returns up to topK candidates, best first.
func (e *Endee) Query(ctx context.Context, text string, filter domain.MatchFilter, topK int) ([]domain.MatchCandidate, error) {
	vecs, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, &domain.ProviderError{Op: "embed", Err: err}
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, &domain.ProviderError{Op: "embed", Err: errors.New("embedder returned no vector")}
	}

	body, err := json.Marshal(searchRequest{
		Vector: vecs[0],
		K:      topK,
		Filter: filterClauses(filter),
	})
	if err != nil {
		return nil, &domain.ProviderError{Op: "search", Err: err}
	}

	endpoint := fmt.Sprintf("%s/index/%s/search", e.baseURL, url.PathEscape(e.index))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ProviderError{Op: "search", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Op: "search", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{Op: "search", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ProviderError{
			Op:         "search",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(raw))),
		}
	}

	hits, err := decodeHits(raw)
	if err != nil {
		return nil, &domain.ProviderError{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}

	out := make([]domain.MatchCandidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, toCandidate(h))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}

	e.logger.Debug("match query", "library", filter.Library, "version", filter.Version, "candidates", len(out))
	return out, nil
}

// filterClauses builds the equality filter. Numeric versions are sent as
// numbers since the index stores them that way.
func filterClauses(f domain.MatchFilter) []map[string]any {
	var clauses []map[string]any
	if f.Library != "" {
		clauses = append(clauses, map[string]any{"library": f.Library})
	}
	if f.Version != "" {
		var v any = f.Version
		if n, err := strconv.Atoi(f.Version); err == nil {
			v = n
		}
		clauses = append(clauses, map[string]any{"version": v})
	}
	return clauses
}

// decodeHits accepts either a bare array or an object with a results field.
func decodeHits(raw []byte) ([]searchHit, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var hits []searchHit
		err := json.Unmarshal(trimmed, &hits)
		return hits, err
	}
	var wrapped struct {
		Results []searchHit `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Results, nil
}

func toCandidate(h searchHit) domain.MatchCandidate {
	c := domain.MatchCandidate{
		Symbol:     metaString(h.Meta, "function"),
		Similarity: h.Similarity,
		Deprecated: metaBool(h.Meta, "deprecated"),
		Replaces:   metaString(h.Meta, "replaces"),
		ReplacedBy: metaString(h.Meta, "replacedBy"),
		MigrateTo:  metaString(h.Meta, "migrateTo"),
		Category:   metaString(h.Meta, "category"),
		Meta:       h.Meta,
	}
	if c.Symbol == "" {
		c.Symbol = "unknown"
	}
	return c
}

func metaString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func metaBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}
