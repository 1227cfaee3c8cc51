package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
)

// OpenAIProvider embeds text through an OpenAI-compatible hosted API.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	dim     int
	hc      *http.Client
}

// NewOpenAIProvider constructs a hosted-API provider.
func NewOpenAIProvider(baseURL, apiKey, model string, dim int, timeout time.Duration) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dim:     dim,
		hc: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "openai.embeddings " + r.Method
				})),
		},
	}
}

// Name implements domain.EmbeddingProvider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Model implements domain.EmbeddingProvider.
func (p *OpenAIProvider) Model() string { return p.model }

// Dimension implements domain.EmbeddingProvider.
func (p *OpenAIProvider) Dimension() int { return p.dim }

// EmbedBatch implements domain.EmbeddingProvider.
func (p *OpenAIProvider) EmbedBatch(ctx domain.Context, texts []string) ([][]float64, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body, _ := json.Marshal(map[string]any{"model": p.model, "input": texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("op=openai.embed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: openai status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}
	var payload struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: openai decode: %v", domain.ErrProviderUnavailable, err)
	}
	if len(payload.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d vectors, want %d", domain.ErrProviderUnavailable, len(payload.Data), len(texts))
	}
	out := make([][]float64, len(texts))
	for _, d := range payload.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("%w: openai index %d out of range", domain.ErrProviderUnavailable, d.Index)
		}
		if p.dim > 0 && len(d.Embedding) != p.dim {
			return nil, fmt.Errorf("%w: openai returned %d dims, want %d", domain.ErrDimensionMismatch, len(d.Embedding), p.dim)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
