package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitech/matchengine/internal/anonymize"
	"github.com/recruitech/matchengine/internal/compliance"
	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/extraction"
	"github.com/recruitech/matchengine/internal/matching"
	"github.com/recruitech/matchengine/internal/pipeline"
	"github.com/recruitech/matchengine/internal/report"
	"github.com/recruitech/matchengine/internal/scoring"
)

// promptClient picks a canned extraction response by a marker in the prompt.
type promptClient struct {
	byMarker map[string]string
	err      error
}

func (c *promptClient) GenerateJSON(_ context.Context, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	for marker, response := range c.byMarker {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "", errors.New("no canned response")
}

func (c *promptClient) Close() error { return nil }

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedEmbedder) Close() error { return nil }

func newTestServer(t *testing.T, client *promptClient) *Server {
	t.Helper()

	anonymizer := anonymize.New(nil)

	synonyms, err := extraction.LoadSynonyms("")
	require.NoError(t, err)
	extractor := extraction.New(client, synonyms, extraction.Options{
		MaxRetries:     0,
		Timeout:        time.Second,
		InitialBackoff: time.Millisecond,
	}, nil)

	matcher := matching.New(fixedEmbedder{}, matching.Config{HardThreshold: 0.75, SoftThreshold: 0.6}, nil)

	catalog, err := compliance.LoadCatalog("")
	require.NoError(t, err)
	checker := compliance.NewChecker(catalog, nil)

	aggregator := scoring.NewAggregator(
		config.Weights{Hard: 0.5, Experience: 0.3, Soft: 0.2},
		time.Now,
	)

	builder, err := report.NewBuilder(anonymizer)
	require.NoError(t, err)

	p := pipeline.New(anonymizer, extractor, matcher, checker, aggregator, builder, nil)
	return New(Config{Port: 0}, p, nil)
}

func cannedResponses() map[string]string {
	skills := `{"skills": [{"name": "go", "raw_text": "go", "category": "HARD", "confidence": 0.9}]}`
	return map[string]string{
		"vacancy analyst": skills,
		"resume analyst":  skills,
	}
}

func matchBody() string {
	return `{
		"vacancy": {"id": "vac-1", "requirements": "Go developer wanted"},
		"candidate": {"id": "cand-1", "summary": "Five years writing Go services"}
	}`
}

func TestHandleMatch_OK(t *testing.T) {
	s := newTestServer(t, &promptClient{byMarker: cannedResponses()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(matchBody()))
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "vac-1", doc["vacancy_id"])
	assert.Equal(t, "cand-1", doc["candidate_id"])
	assert.Contains(t, doc, "final_score")
}

func TestHandleMatch_MalformedBody(t *testing.T) {
	s := newTestServer(t, &promptClient{byMarker: cannedResponses()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader("{not json"))
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMatch_ValidationError(t *testing.T) {
	s := newTestServer(t, &promptClient{byMarker: cannedResponses()})

	body := `{"vacancy": {"id": "vac-1"}, "candidate": {"id": "cand-1", "summary": "text"}}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "Requirements")
}

func TestHandleMatch_ExtractionOutage(t *testing.T) {
	s := newTestServer(t, &promptClient{err: errors.New("model overloaded")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(matchBody()))
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &promptClient{byMarker: cannedResponses()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, &promptClient{byMarker: cannedResponses()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/match", nil)
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
