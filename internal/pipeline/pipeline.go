// Package pipeline orchestrates one match request end to end: sanitize,
// anonymize, extract, match, check compliance, score, and render the report.
// A run either produces a complete report or an error, never a partial one.
package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recruitech/matchengine/internal/anonymize"
	"github.com/recruitech/matchengine/internal/compliance"
	"github.com/recruitech/matchengine/internal/extraction"
	"github.com/recruitech/matchengine/internal/ingestion"
	"github.com/recruitech/matchengine/internal/matching"
	"github.com/recruitech/matchengine/internal/report"
	"github.com/recruitech/matchengine/internal/scoring"
	"github.com/recruitech/matchengine/internal/types"
)

// Pipeline wires the processing stages together. It is stateless across
// requests and safe for concurrent use; the stages share only read-only
// catalogs and clients.
type Pipeline struct {
	anonymizer *anonymize.Anonymizer
	extractor  *extraction.Extractor
	matcher    *matching.Matcher
	checker    *compliance.Checker
	aggregator *scoring.Aggregator
	builder    *report.Builder
	logger     *zap.Logger
}

// New assembles a pipeline from already-constructed stages.
func New(
	anonymizer *anonymize.Anonymizer,
	extractor *extraction.Extractor,
	matcher *matching.Matcher,
	checker *compliance.Checker,
	aggregator *scoring.Aggregator,
	builder *report.Builder,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		anonymizer: anonymizer,
		extractor:  extractor,
		matcher:    matcher,
		checker:    checker,
		aggregator: aggregator,
		builder:    builder,
		logger:     logger,
	}
}

// Run executes the full match for one (vacancy, candidate) pair and returns
// the serialized report. Placeholder maps produced by anonymization never
// leave this function.
func (p *Pipeline) Run(ctx context.Context, req *ingestion.MatchRequest) ([]byte, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	vacancyText := ingestion.Sanitize(joinSections(req.Vacancy.Summary, req.Vacancy.Requirements))
	candidateText := ingestion.Sanitize(joinSections(req.Candidate.Summary, req.Candidate.Experience, req.Candidate.SkillsFreeText))

	cleanVacancy, _, err := p.anonymizer.Anonymize(vacancyText)
	if err != nil {
		return nil, err
	}
	cleanCandidate, _, err := p.anonymizer.Anonymize(candidateText)
	if err != nil {
		return nil, err
	}

	// The two extraction calls are independent LLM round trips; run them in
	// parallel and let either failure cancel the other.
	g, gCtx := errgroup.WithContext(ctx)

	var vacancySkills, candidateSkills []types.SkillMention

	g.Go(func() error {
		skills, err := p.extractor.Extract(gCtx, cleanVacancy, types.ProfileVacancy)
		if err != nil {
			return err
		}
		vacancySkills = skills
		return nil
	})

	g.Go(func() error {
		skills, err := p.extractor.Extract(gCtx, cleanCandidate, types.ProfileCandidate)
		if err != nil {
			return err
		}
		candidateSkills = skills
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	match, err := p.matcher.Match(ctx, vacancySkills, candidateSkills)
	if err != nil {
		return nil, err
	}

	candidate := &types.CandidateProfile{
		ID:         req.Candidate.ID,
		Summary:    cleanCandidate,
		Attributes: req.Candidate.Attributes,
		Skills:     candidateSkills,
	}
	verdicts := p.checker.Check(candidate)

	score := p.aggregator.Aggregate(match, verdicts)

	doc, err := p.builder.Build(score, req.Vacancy.ID, req.Candidate.ID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("match completed",
		zap.String("vacancy_id", req.Vacancy.ID),
		zap.String("candidate_id", req.Candidate.ID),
		zap.Float64("final_score", score.FinalScore),
		zap.Bool("disqualified", score.Disqualified),
		zap.Int("matched_pairs", len(match.MatchedPairs)),
		zap.Duration("duration", time.Since(started)),
	)

	return doc, nil
}

// joinSections concatenates the non-empty parts of a document with blank
// lines so downstream stages see one text.
func joinSections(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "\n\n")
}
