package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitech/matchengine/internal/anonymize"
	"github.com/recruitech/matchengine/internal/compliance"
	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/extraction"
	"github.com/recruitech/matchengine/internal/ingestion"
	"github.com/recruitech/matchengine/internal/llm"
	"github.com/recruitech/matchengine/internal/matching"
	"github.com/recruitech/matchengine/internal/report"
	"github.com/recruitech/matchengine/internal/scoring"
	"github.com/recruitech/matchengine/internal/types"
)

// stageClient serves extraction responses keyed by a marker in the prompt.
// The two extraction calls run concurrently, so call order is not usable.
type stageClient struct {
	mu       sync.Mutex
	byMarker map[string]string
	err      error
	prompts  []string
}

func (c *stageClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	for marker, response := range c.byMarker {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "", errors.New("no canned response for prompt")
}

func (c *stageClient) Close() error { return nil }

// nameEmbedder maps skill names to fixed vectors so pair similarities are
// deterministic.
type nameEmbedder struct {
	vectors map[string][]float32
}

func (e *nameEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *nameEmbedder) Close() error { return nil }

func newTestPipeline(t *testing.T, client llm.Client, embedder llm.Embedder) *Pipeline {
	t.Helper()

	anonymizer := anonymize.New(nil)

	synonyms, err := extraction.LoadSynonyms("")
	require.NoError(t, err)
	extractor := extraction.New(client, synonyms, extraction.Options{
		MaxRetries:     1,
		Timeout:        time.Second,
		InitialBackoff: time.Millisecond,
	}, nil)

	matcher := matching.New(embedder, matching.Config{HardThreshold: 0.75, SoftThreshold: 0.6}, nil)

	catalog, err := compliance.LoadCatalog("")
	require.NoError(t, err)
	checker := compliance.NewChecker(catalog, nil)

	weights := config.Weights{Hard: 0.5, Experience: 0.3, Soft: 0.2}
	aggregator := scoring.NewAggregator(weights, func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	})

	builder, err := report.NewBuilder(anonymizer)
	require.NoError(t, err)

	return New(anonymizer, extractor, matcher, checker, aggregator, builder, nil)
}

func validRequest() *ingestion.MatchRequest {
	return &ingestion.MatchRequest{
		Vacancy: ingestion.VacancyInput{
			ID:           "vac-1",
			Requirements: "Expert in python required. Strong communication expected.",
		},
		Candidate: ingestion.CandidateInput{
			ID:         "cand-1",
			Summary:    "Contact me at john.doe@example.com. Eight years of python programming.",
			Experience: "Led project meetings, so plenty of team leadership.",
			Attributes: map[string]string{
				"work_authorization": "EU",
				"certifications":     "AWS Solutions Architect",
				"years_experience":   "8",
			},
		},
	}
}

func vacancySkillsJSON() string {
	return `{"skills": [
		{"name": "python", "raw_text": "python", "category": "HARD", "confidence": 1.0},
		{"name": "communication", "raw_text": "communication", "category": "SOFT", "confidence": 1.0}
	]}`
}

func candidateSkillsJSON() string {
	return `{"skills": [
		{"name": "python programming", "raw_text": "python programming", "category": "HARD", "confidence": 0.9},
		{"name": "team leadership", "raw_text": "team leadership", "category": "SOFT", "confidence": 0.8}
	]}`
}

func pairedVectors() map[string][]float32 {
	return map[string][]float32{
		"python":             {1, 0},
		"python programming": {0.9, 0.436},
		"communication":      {0, 1},
		"team leadership":    {0.76, 0.65},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	client := &stageClient{byMarker: map[string]string{
		"vacancy analyst": vacancySkillsJSON(),
		"resume analyst":  candidateSkillsJSON(),
	}}
	p := newTestPipeline(t, client, &nameEmbedder{vectors: pairedVectors()})

	raw, err := p.Run(context.Background(), validRequest())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "1.0", doc["report_version"])
	assert.Equal(t, "vac-1", doc["vacancy_id"])
	assert.Equal(t, "cand-1", doc["candidate_id"])
	assert.Equal(t, false, doc["disqualified"])

	score, ok := doc["final_score"].(float64)
	require.True(t, ok)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	pairs, ok := doc["matched_skills"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, pairs)
}

func TestRun_PIINeverReachesLLMOrReport(t *testing.T) {
	client := &stageClient{byMarker: map[string]string{
		"vacancy analyst": vacancySkillsJSON(),
		"resume analyst":  candidateSkillsJSON(),
	}}
	p := newTestPipeline(t, client, &nameEmbedder{vectors: pairedVectors()})

	raw, err := p.Run(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "john.doe@example.com")

	require.Len(t, client.prompts, 2)
	for _, prompt := range client.prompts {
		assert.NotContains(t, prompt, "john.doe@example.com")
	}

	var sawPlaceholder bool
	for _, prompt := range client.prompts {
		if strings.Contains(prompt, "<EMAIL_1>") {
			sawPlaceholder = true
		}
	}
	assert.True(t, sawPlaceholder, "candidate prompt should carry the email placeholder")
}

func TestRun_ComplianceFailureDisqualifies(t *testing.T) {
	client := &stageClient{byMarker: map[string]string{
		"vacancy analyst": vacancySkillsJSON(),
		"resume analyst":  candidateSkillsJSON(),
	}}
	p := newTestPipeline(t, client, &nameEmbedder{vectors: pairedVectors()})

	req := validRequest()
	req.Candidate.Attributes["work_authorization"] = "no"

	raw, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, true, doc["disqualified"])
	score, ok := doc["final_score"].(float64)
	require.True(t, ok)
	assert.Greater(t, score, 0.0, "numeric score is retained alongside disqualification")
}

func TestRun_InvalidRequest(t *testing.T) {
	p := newTestPipeline(t, &stageClient{}, &nameEmbedder{})

	req := validRequest()
	req.Vacancy.Requirements = ""

	_, err := p.Run(context.Background(), req)
	var inputErr *types.InputError
	require.ErrorAs(t, err, &inputErr)

	p2 := newTestPipeline(t, &stageClient{}, &nameEmbedder{})
	_, err = p2.Run(context.Background(), &ingestion.MatchRequest{})
	require.ErrorAs(t, err, &inputErr)
}

func TestRun_ExtractionOutageAbortsWithoutReport(t *testing.T) {
	client := &stageClient{err: errors.New("model overloaded")}
	p := newTestPipeline(t, client, &nameEmbedder{})

	raw, err := p.Run(context.Background(), validRequest())
	assert.Nil(t, raw)

	var unavailable *types.ExtractionUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stageClient{byMarker: map[string]string{
		"vacancy analyst": vacancySkillsJSON(),
		"resume analyst":  candidateSkillsJSON(),
	}}
	p := newTestPipeline(t, client, &nameEmbedder{vectors: pairedVectors()})

	_, err := p.Run(ctx, validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoinSections(t *testing.T) {
	assert.Equal(t, "a\n\nb", joinSections("a", "", "b"))
	assert.Equal(t, "", joinSections("", "  "))
}
