package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/normalize"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/scoring"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

func TestParseOrigins(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example.com", []string{"https://a.example.com"}},
		{"https://a.example.com, https://b.example.com", []string{"https://a.example.com", "https://b.example.com"}},
		{" , ", []string{"*"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseOrigins(tc.in), "input %q", tc.in)
	}
}

type staticEmbedder struct{}

func (staticEmbedder) EmbedText(domain.Context, string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{CORSAllowOrigins: "*", RateLimitPerMin: 1000}
	sc := scoring.NewScorer(staticEmbedder{}, scoring.DefaultOptions())
	nm := normalize.New(normalize.DefaultVocabulary(), staticEmbedder{}, nil)
	score := usecase.NewScoreService(sc, nm)
	batch := usecase.NewBatchService(score, nil, 2)
	srv := httpserver.NewServer(cfg, score, batch, nil, nil)
	return BuildRouter(cfg, srv)
}

func TestRouter_Healthz(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_Readyz(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "no checks configured means ready")
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ScoreRoute(t *testing.T) {
	h := newTestRouter(t)
	body := bytes.NewBufferString(`{
		"candidate": {"candidate_id": "c-1", "titles_norm": [{"title": "product designer", "level": 3}]},
		"role": {"titles": ["product designer"], "level": "senior"}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/score", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"fit_score"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
