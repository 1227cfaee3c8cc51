package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/normalize"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/scoring"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

type unitEmbedder struct{}

func (unitEmbedder) EmbedText(domain.Context, string) ([]float64, error) {
	return []float64{1, 0, 0}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	sc := scoring.NewScorer(unitEmbedder{}, scoring.DefaultOptions())
	nm := normalize.New(normalize.DefaultVocabulary(), unitEmbedder{}, nil)
	score := usecase.NewScoreService(sc, nm)
	batch := usecase.NewBatchService(score, nil, 2)
	return NewServer(config.Config{}, score, batch, nil, nil)
}

type errBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestScoreHandler_InlineRole(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.ScoreHandler(), `{
		"candidate": {
			"candidate_id": "c-1",
			"name": "Ada",
			"titles_norm": [{"title": "senior product designer", "level": 3}]
		},
		"role": {"titles": ["product designer"], "level": "senior"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var got domain.ScoredCandidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "c-1", got.CandidateID)
	assert.Equal(t, 30.0, got.FitScore)
	assert.NotEmpty(t, got.Rationale)
}

func TestScoreHandler_BuiltinRoleRef(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.ScoreHandler(), `{
		"candidate": {"candidate_id": "c-1", "titles_norm": [{"title": "senior product designer", "level": 3}]},
		"role_ref": "agoric"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.ScoredCandidate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Greater(t, got.FitScore, 0.0)
}

func TestScoreHandler_UnknownRoleRef(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.ScoreHandler(), `{
		"candidate": {"candidate_id": "c-1"},
		"role_ref": "no-such-profile"
	}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestScoreHandler_MissingRole(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.ScoreHandler(), `{"candidate": {"candidate_id": "c-1"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_ARGUMENT", body.Error.Code)
	assert.Contains(t, body.Error.Message, "role or role_ref required")
}

func TestScoreHandler_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.ScoreHandler(), `{"candidate":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_ARGUMENT", body.Error.Code)
}

func TestScoreHandler_NotAcceptable(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewBufferString(`{}`))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.ScoreHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
}

func TestBatchScoreHandler_OK(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.BatchScoreHandler(), `{
		"candidates": [
			{"candidate_id": "c-1", "titles_norm": [{"title": "product designer", "level": 3}]},
			{"candidate_id": "c-2"}
		],
		"role": {"titles": ["product designer"], "level": "senior"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out usecase.BatchOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.RunID)
	require.Len(t, out.Scored, 2)
	assert.Equal(t, "c-1", out.Scored[0].CandidateID, "higher fit first")
	assert.Zero(t, out.Failed)
}

func TestBatchScoreHandler_EmptyCandidates(t *testing.T) {
	srv := newTestServer(t)
	rec := postJSON(t, srv.BatchScoreHandler(), `{"candidates": [], "role_ref": "agoric"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_ARGUMENT", body.Error.Code)
}

func TestReadyzHandler_AllChecksPass(t *testing.T) {
	srv := newTestServer(t)
	srv.DBCheck = func(context.Context) error { return nil }
	srv.CacheCheck = func(context.Context) error { return nil }

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.ReadyzHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Ready  bool `json:"ready"`
		Checks []struct {
			Name string `json:"name"`
			OK   bool   `json:"ok"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Ready)
	assert.Len(t, body.Checks, 2)
}

func TestReadyzHandler_FailingDB(t *testing.T) {
	srv := newTestServer(t)
	srv.DBCheck = func(context.Context) error { return errors.New("connection refused") }
	srv.CacheCheck = func(context.Context) error { return nil }

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.ReadyzHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWriteError_SentinelMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		api  string
	}{
		{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrVectorInvalid, http.StatusBadRequest, "VECTOR_INVALID"},
		{domain.ErrDimensionMismatch, http.StatusServiceUnavailable, "DIMENSION_MISMATCH"},
		{domain.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"},
		{domain.ErrProviderUnavailable, http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE"},
		{domain.ErrAdjudicatorUnavailable, http.StatusServiceUnavailable, "ADJUDICATOR_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		writeError(rec, req, tc.err, nil)
		assert.Equal(t, tc.code, rec.Code, tc.api)
		var body errBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.api, body.Error.Code)
	}
}
