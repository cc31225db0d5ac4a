// Package ingestion validates and sanitizes incoming match requests before
// any processing happens.
package ingestion

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/recruitech/matchengine/internal/types"
)

// MatchRequest is the engine input for one (vacancy, candidate) pair.
type MatchRequest struct {
	Vacancy   VacancyInput   `json:"vacancy" validate:"required"`
	Candidate CandidateInput `json:"candidate" validate:"required"`
}

// VacancyInput is the raw, possibly PII-bearing vacancy document.
type VacancyInput struct {
	ID           string `json:"id" validate:"required"`
	Summary      string `json:"summary"`
	Requirements string `json:"requirements" validate:"required"`
}

// CandidateInput is the raw, possibly PII-bearing candidate document.
// Attributes carries structured facts consumed by compliance rules.
type CandidateInput struct {
	ID             string            `json:"id" validate:"required"`
	Summary        string            `json:"summary"`
	Experience     string            `json:"experience"`
	SkillsFreeText string            `json:"skills_free_text"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

var validate = validator.New()

// Validate rejects malformed requests with an InputError before the pipeline
// touches them. Non-retryable.
func (r *MatchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return &types.InputError{
				Field:   first.Namespace(),
				Message: fmt.Sprintf("failed %q validation", first.Tag()),
			}
		}
		return &types.InputError{Message: err.Error()}
	}

	if r.Candidate.Summary == "" && r.Candidate.Experience == "" && r.Candidate.SkillsFreeText == "" {
		return &types.InputError{
			Field:   "candidate",
			Message: "at least one of summary, experience, or skills_free_text is required",
		}
	}

	return nil
}
