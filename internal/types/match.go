package types

// MatchedPair records one vacancy skill paired with its best candidate skill.
type MatchedPair struct {
	VacancySkill   string  `json:"vacancy_skill"`
	CandidateSkill string  `json:"candidate_skill"`
	Similarity     float64 `json:"similarity"`
}

// MatchResult holds the semantic matching sub-scores for one
// (vacancy, candidate) pair. Produced once, never mutated.
// All sub-scores are in [0,1].
type MatchResult struct {
	HardSkillScore  float64       `json:"hard_skill_score"`
	ExperienceScore float64       `json:"experience_score"`
	SoftSkillScore  float64       `json:"soft_skill_score"`
	MatchedPairs    []MatchedPair `json:"matched_pairs"`
}
