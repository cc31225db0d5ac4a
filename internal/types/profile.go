// Package types defines the shared domain types for the matching engine.
package types

// ProfileType distinguishes the two sides of a match.
type ProfileType string

const (
	ProfileVacancy   ProfileType = "VACANCY"
	ProfileCandidate ProfileType = "CANDIDATE"
)

// SkillCategory classifies a skill mention.
type SkillCategory string

const (
	SkillHard SkillCategory = "HARD"
	SkillSoft SkillCategory = "SOFT"
)

// SkillMention is a single normalized skill extracted from free text.
// Mentions are unique by Name within a profile; duplicates are merged
// keeping the maximum confidence.
type SkillMention struct {
	Name             string        `json:"name"`     // normalized (case-folded, synonym-collapsed)
	RawText          string        `json:"raw_text"` // original phrase from the source text
	Confidence       float64       `json:"confidence"`
	Category         SkillCategory `json:"category"`
	LastUsedYearsAgo *float64      `json:"last_used_years_ago,omitempty"`
}

// VacancyProfile holds the anonymized source sections of a vacancy and,
// once extraction completes, its skill mentions. Immutable after extraction;
// a new profile is created per request.
type VacancyProfile struct {
	ID           string         `json:"id"`
	Summary      string         `json:"summary"`
	Requirements string         `json:"requirements"`
	Skills       []SkillMention `json:"skills,omitempty"`
}

// CandidateProfile is the candidate-side counterpart of VacancyProfile.
// Attributes carries structured, already-normalized facts (work authorization,
// certifications, years of experience) used by compliance rules.
type CandidateProfile struct {
	ID             string            `json:"id"`
	Summary        string            `json:"summary"`
	Experience     string            `json:"experience"`
	SkillsFreeText string            `json:"skills_free_text"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	Skills         []SkillMention    `json:"skills,omitempty"`
}

// FilterByCategory returns the mentions of the given category, preserving order.
func FilterByCategory(mentions []SkillMention, category SkillCategory) []SkillMention {
	filtered := make([]SkillMention, 0, len(mentions))
	for _, m := range mentions {
		if m.Category == category {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
