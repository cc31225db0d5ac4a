// Package scoring combines the semantic sub-scores and the compliance report
// into one weighted, gated score.
package scoring

import (
	"time"

	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/types"
)

// Default aggregation weights: 50% hard skills, 30% experience, 20% soft
// skills. The sum is validated at startup; an invalid sum never reaches
// request time.
const (
	HardWeight       = config.DefaultHardWeight
	ExperienceWeight = config.DefaultExperienceWeight
	SoftWeight       = config.DefaultSoftWeight
)

// Aggregator produces ScoreReports. Stateless apart from its weights, which
// are validated once at startup.
type Aggregator struct {
	weights config.Weights
	now     func() time.Time
}

// NewAggregator creates an Aggregator. now may be nil, defaulting to
// time.Now; tests inject a fixed clock.
func NewAggregator(weights config.Weights, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{weights: weights, now: now}
}

// Aggregate computes final_score = 100 × (hard·wₕ + experience·wₑ + soft·wₛ)
// and applies compliance as a gating modifier. A disqualified report still
// carries the numeric score for analytics and audit; disqualified=true is
// the authoritative gate for any downstream decision.
func (a *Aggregator) Aggregate(match types.MatchResult, compliance types.ComplianceReport) types.ScoreReport {
	final := 100 * (a.weights.Hard*match.HardSkillScore +
		a.weights.Experience*match.ExperienceScore +
		a.weights.Soft*match.SoftSkillScore)

	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return types.ScoreReport{
		FinalScore: final,
		Breakdown: types.Breakdown{
			Hard:       match.HardSkillScore,
			Experience: match.ExperienceScore,
			Soft:       match.SoftSkillScore,
		},
		MatchedPairs: match.MatchedPairs,
		Compliance:   compliance,
		Disqualified: compliance.HasFailure(),
		GeneratedAt:  a.now().UTC(),
	}
}
