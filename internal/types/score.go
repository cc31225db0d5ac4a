package types

import "time"

// Breakdown holds the unweighted sub-scores, each in [0,1].
type Breakdown struct {
	Hard       float64 `json:"hard_skills"`
	Experience float64 `json:"experience"`
	Soft       float64 `json:"soft_skills"`
}

// ScoreReport is the terminal entity of the engine: one weighted, gated score
// per (vacancy, candidate) pair. Immutable; serialized once and discarded.
type ScoreReport struct {
	FinalScore   float64          `json:"final_score"` // [0,100], computed even when disqualified
	Breakdown    Breakdown        `json:"breakdown"`
	MatchedPairs []MatchedPair    `json:"matched_skills"`
	Compliance   ComplianceReport `json:"compliance"`
	Disqualified bool             `json:"disqualified"`
	GeneratedAt  time.Time        `json:"generated_at"`
}
