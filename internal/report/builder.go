// Package report assembles the terminal, versioned JSON document of a
// matching request.
//
// The document is schema-validated before it leaves the engine and audited
// for PII: placeholders are never resolved back to originals, and any PII
// pattern surviving into the document is a fatal internal invariant
// violation and the report is withheld.
package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/recruitech/matchengine/internal/types"
)

// Version identifies the report schema generation. Bump only with a schema
// change; field names are contractual.
const Version = "1.0"

//go:embed report_v1.schema.json
var schemaJSON []byte

// Document is the wire shape of a match report.
type Document struct {
	ReportVersion string                    `json:"report_version"`
	ReportID      string                    `json:"report_id"`
	CandidateID   string                    `json:"candidate_id"`
	VacancyID     string                    `json:"vacancy_id"`
	FinalScore    float64                   `json:"final_score"`
	Disqualified  bool                      `json:"disqualified"`
	Breakdown     types.Breakdown           `json:"breakdown"`
	MatchedSkills []types.MatchedPair       `json:"matched_skills"`
	Compliance    []types.ComplianceVerdict `json:"compliance"`
	GeneratedAt   string                    `json:"generated_at"`
}

// Auditor detects PII patterns; the anonymizer satisfies it.
type Auditor interface {
	ContainsPII(text string) bool
}

// Builder turns ScoreReports into validated JSON documents.
type Builder struct {
	schema  *gojsonschema.Schema
	auditor Auditor
	newID   func() string
}

// NewBuilder compiles the embedded schema and wires the PII auditor.
func NewBuilder(auditor Auditor) (*Builder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile report schema: %w", err)
	}
	return &Builder{
		schema:  schema,
		auditor: auditor,
		newID:   uuid.NewString,
	}, nil
}

// Build serializes the score into the versioned report document. The caller
// discards its placeholder maps after this step; nothing here can resolve a
// placeholder back to an original value.
func (b *Builder) Build(score types.ScoreReport, vacancyID, candidateID string) ([]byte, error) {
	doc := Document{
		ReportVersion: Version,
		ReportID:      b.newID(),
		CandidateID:   candidateID,
		VacancyID:     vacancyID,
		FinalScore:    score.FinalScore,
		Disqualified:  score.Disqualified,
		Breakdown:     score.Breakdown,
		MatchedSkills: score.MatchedPairs,
		Compliance:    score.Compliance,
		GeneratedAt:   score.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if doc.MatchedSkills == nil {
		doc.MatchedSkills = []types.MatchedPair{}
	}
	if doc.Compliance == nil {
		doc.Compliance = []types.ComplianceVerdict{}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	result, err := b.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &types.InvariantViolation{Message: fmt.Sprintf("report schema validation errored: %v", err)}
	}
	if !result.Valid() {
		return nil, &types.InvariantViolation{Message: fmt.Sprintf("report violates schema: %v", result.Errors())}
	}

	if b.auditor != nil {
		for _, field := range auditableFields(&doc) {
			if b.auditor.ContainsPII(field) {
				return nil, &types.InvariantViolation{Message: "PII pattern detected in built report"}
			}
		}
	}

	return raw, nil
}

// auditableFields collects every document field whose content originates
// outside the engine. ReportID and GeneratedAt are engine-generated and
// cannot carry PII by construction.
func auditableFields(doc *Document) []string {
	fields := []string{doc.CandidateID, doc.VacancyID}
	for _, pair := range doc.MatchedSkills {
		fields = append(fields, pair.VacancySkill, pair.CandidateSkill)
	}
	for _, verdict := range doc.Compliance {
		fields = append(fields, verdict.RuleID, verdict.Explanation)
	}
	return fields
}
