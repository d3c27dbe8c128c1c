// Package embedder turns description texts into vectors for the match provider.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/breakguard/breakguard/internal/domain"
)

const (
	ollamaBatchSize  = 64
	ollamaBatchDelay = 200 * time.Millisecond
)

// Ollama calls the /api/embed endpoint of an Ollama server.
type Ollama struct {
	client     *http.Client
	model      string
	endpoint   string
	batchDelay time.Duration
}

// OllamaOption configures an Ollama embedder.
type OllamaOption func(*Ollama)

// WithBatchDelay sets the pause between consecutive batches of one Embed call.
func WithBatchDelay(d time.Duration) OllamaOption {
	return func(o *Ollama) {
		if d >= 0 {
			o.batchDelay = d
		}
	}
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewOllama builds an embedder from cfg. An empty URL uses the local default.
func NewOllama(cfg domain.EmbedderConfig, timeout time.Duration, opts ...OllamaOption) *Ollama {
	url := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if url == "" {
		url = domain.DefaultEmbedderURL
	}
	if !strings.HasSuffix(url, "/api/embed") {
		url += "/api/embed"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	o := &Ollama{
		client:     &http.Client{Timeout: timeout},
		model:      cfg.Model,
		endpoint:   url,
		batchDelay: ollamaBatchDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Embed returns one vector per text, in order.
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("ollama embedding model is required")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += ollamaBatchSize {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.batchDelay):
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(i+ollamaBatchSize, len(texts))
		vecs, err := o.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (o *Ollama) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Input: batch})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama embed request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}
	if len(parsed.Embeddings) != len(batch) {
		return nil, fmt.Errorf("ollama embedding count mismatch: got %d, expected %d", len(parsed.Embeddings), len(batch))
	}
	return parsed.Embeddings, nil
}
