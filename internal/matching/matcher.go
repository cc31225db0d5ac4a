// Package matching computes semantic similarity between extracted skill sets
// in embedding space, not by string equality.
package matching

import (
	"context"

	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/llm"
	"github.com/recruitech/matchengine/internal/types"
)

// Config holds the similarity thresholds. A vacancy skill with no candidate
// skill at or above its threshold counts as unmatched and contributes 0.
type Config struct {
	HardThreshold float64
	SoftThreshold float64
}

// Matcher pairs vacancy skills with candidate skills. For fixed embeddings
// and thresholds matching is fully deterministic: similarity ties are broken
// by the higher candidate confidence, then by normalized-name lexical order.
type Matcher struct {
	embedder llm.Embedder
	cfg      Config
	logger   *zap.Logger
}

// New creates a Matcher. logger may be nil.
func New(embedder llm.Embedder, cfg Config, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{embedder: embedder, cfg: cfg, logger: logger}
}

// recencyHorizonYears is the window over which a dated skill decays linearly
// from full weight to zero.
const recencyHorizonYears = 10.0

// Match computes the hard-skill, experience, and soft-skill sub-scores for
// one (vacancy, candidate) pair. The embedder call is the only blocking
// point; the rest operates on immutable request-scoped data.
func (m *Matcher) Match(ctx context.Context, vacancySkills, candidateSkills []types.SkillMention) (types.MatchResult, error) {
	vectors, err := m.embedAll(ctx, vacancySkills, candidateSkills)
	if err != nil {
		return types.MatchResult{}, err
	}

	vacancyHard := types.FilterByCategory(vacancySkills, types.SkillHard)
	candidateHard := types.FilterByCategory(candidateSkills, types.SkillHard)
	vacancySoft := types.FilterByCategory(vacancySkills, types.SkillSoft)
	candidateSoft := types.FilterByCategory(candidateSkills, types.SkillSoft)

	hardScore, hardPairs := m.scoreSubset(vacancyHard, candidateHard, vectors, m.cfg.HardThreshold, nil)
	experienceScore, _ := m.scoreSubset(vacancyHard, candidateHard, vectors, m.cfg.HardThreshold, recencyFactor)
	softScore, softPairs := m.scoreSubset(vacancySoft, candidateSoft, vectors, m.cfg.SoftThreshold, nil)

	pairs := make([]types.MatchedPair, 0, len(hardPairs)+len(softPairs))
	pairs = append(pairs, hardPairs...)
	pairs = append(pairs, softPairs...)

	m.logger.Debug("semantic match computed",
		zap.Int("vacancy_skills", len(vacancySkills)),
		zap.Int("candidate_skills", len(candidateSkills)),
		zap.Int("matched_pairs", len(pairs)),
		zap.Float64("hard_score", hardScore),
		zap.Float64("experience_score", experienceScore),
		zap.Float64("soft_score", softScore),
	)

	return types.MatchResult{
		HardSkillScore:  hardScore,
		ExperienceScore: experienceScore,
		SoftSkillScore:  softScore,
		MatchedPairs:    pairs,
	}, nil
}

// embedAll fetches one vector per distinct skill name across both sets.
func (m *Matcher) embedAll(ctx context.Context, vacancySkills, candidateSkills []types.SkillMention) (map[string][]float32, error) {
	vectors := make(map[string][]float32)
	for _, set := range [][]types.SkillMention{vacancySkills, candidateSkills} {
		for _, mention := range set {
			if _, ok := vectors[mention.Name]; ok {
				continue
			}
			vec, err := m.embedder.Embed(ctx, mention.Name)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, &types.ExtractionUnavailable{Cause: err}
			}
			vectors[mention.Name] = vec
		}
	}
	return vectors, nil
}

// scoreSubset assigns each vacancy skill its best candidate match at or above
// threshold and returns the normalized sub-score with the matched pairs in
// vacancy order. weight, when non-nil, scales each matched similarity by a
// per-candidate factor (recency for the experience sub-score).
func (m *Matcher) scoreSubset(
	vacancy, candidate []types.SkillMention,
	vectors map[string][]float32,
	threshold float64,
	weight func(types.SkillMention) float64,
) (float64, []types.MatchedPair) {
	if len(vacancy) == 0 {
		return 0, nil
	}

	sum := 0.0
	pairs := make([]types.MatchedPair, 0, len(vacancy))

	for _, v := range vacancy {
		best, found := bestCandidate(vectors[v.Name], candidate, vectors)
		if !found || best.similarity < threshold {
			continue // unmatched vacancy skill contributes 0
		}

		contribution := best.similarity
		if weight != nil {
			contribution *= weight(best.mention)
		}
		sum += contribution

		pairs = append(pairs, types.MatchedPair{
			VacancySkill:   v.Name,
			CandidateSkill: best.mention.Name,
			Similarity:     best.similarity,
		})
	}

	return clamp01(sum / float64(len(vacancy))), pairs
}

type candidateMatch struct {
	mention    types.SkillMention
	similarity float64
}

// bestCandidate picks the candidate skill with the highest similarity to the
// vacancy vector. Ties prefer higher raw confidence, then lexically smaller
// normalized name, keeping the result independent of input ordering.
func bestCandidate(vacancyVec []float32, candidate []types.SkillMention, vectors map[string][]float32) (candidateMatch, bool) {
	var best candidateMatch
	found := false

	for _, c := range candidate {
		sim := cosine(vacancyVec, vectors[c.Name])
		if !found {
			best = candidateMatch{mention: c, similarity: sim}
			found = true
			continue
		}
		switch {
		case sim > best.similarity:
			best = candidateMatch{mention: c, similarity: sim}
		case sim == best.similarity && c.Confidence > best.mention.Confidence:
			best = candidateMatch{mention: c, similarity: sim}
		case sim == best.similarity && c.Confidence == best.mention.Confidence && c.Name < best.mention.Name:
			best = candidateMatch{mention: c, similarity: sim}
		}
	}

	return best, found
}

// recencyFactor linearly decays a dated skill over recencyHorizonYears.
// Undated skills keep full weight; absence of information is neutral.
func recencyFactor(mention types.SkillMention) float64 {
	if mention.LastUsedYearsAgo == nil {
		return 1.0
	}
	years := *mention.LastUsedYearsAgo
	if years <= 0 {
		return 1.0
	}
	if years >= recencyHorizonYears {
		return 0.0
	}
	return 1.0 - years/recencyHorizonYears
}
