package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruitech/matchengine/internal/config"
	"github.com/recruitech/matchengine/internal/types"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := parseCatalog([]byte(`
version: "test"
rules:
  - id: work-authorization
    type: field_present
    field: work_authorization
    description: Candidate must hold a work authorization
  - id: region
    type: field_matches
    field: work_authorization
    pattern: "(?i)^(eu|us)$"
  - id: min-years
    type: numeric_threshold
    field: years_experience
    min: 2
`))
	require.NoError(t, err)
	return catalog
}

func candidateWith(attrs map[string]string) *types.CandidateProfile {
	return &types.CandidateProfile{ID: "cand-1", Attributes: attrs}
}

func TestCheck_AllPass(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(map[string]string{
		"work_authorization": "EU",
		"years_experience":   "5",
	}))

	require.Len(t, report, 3)
	for _, v := range report {
		assert.Equal(t, types.StatusPass, v.Status, "rule %s", v.RuleID)
	}
	assert.False(t, report.HasFailure())
}

func TestCheck_MissingFieldIsWarningNotFail(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(map[string]string{
		"years_experience": "5",
	}))

	require.Len(t, report, 3)
	assert.Equal(t, types.StatusWarning, report[0].Status)
	assert.Equal(t, types.StatusWarning, report[1].Status)
	assert.Equal(t, types.StatusPass, report[2].Status)
	assert.False(t, report.HasFailure())
}

func TestCheck_ExplicitNegationFails(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(map[string]string{
		"work_authorization": "no",
		"years_experience":   "5",
	}))

	assert.Equal(t, types.StatusFail, report[0].Status)
	assert.True(t, report.HasFailure())
}

func TestCheck_PatternMismatchFails(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(map[string]string{
		"work_authorization": "MARS",
		"years_experience":   "5",
	}))

	assert.Equal(t, types.StatusPass, report[0].Status) // present
	assert.Equal(t, types.StatusFail, report[1].Status) // wrong region
}

func TestCheck_NumericThreshold(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(map[string]string{
		"work_authorization": "EU",
		"years_experience":   "1",
	}))
	assert.Equal(t, types.StatusFail, report[2].Status)

	report = checker.Check(candidateWith(map[string]string{
		"work_authorization": "EU",
		"years_experience":   "many",
	}))
	assert.Equal(t, types.StatusWarning, report[2].Status)
}

func TestCheck_OrderPreserved(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(nil))

	require.Len(t, report, 3)
	assert.Equal(t, "work-authorization", report[0].RuleID)
	assert.Equal(t, "region", report[1].RuleID)
	assert.Equal(t, "min-years", report[2].RuleID)
}

func TestCheck_ExplanationCarriesDescription(t *testing.T) {
	checker := NewChecker(testCatalog(t), nil)

	report := checker.Check(candidateWith(nil))
	assert.Contains(t, report[0].Explanation, "Candidate must hold a work authorization")
}

func TestLoadCatalog_EmbeddedDefault(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, "1.0", catalog.Version)
	assert.NotEmpty(t, catalog.Rules)
}

func TestParseCatalog_EmptyIsConfigurationError(t *testing.T) {
	_, err := parseCatalog([]byte(`version: "1.0"` + "\nrules: []\n"))
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseCatalog_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
rules:
  - id: r1
    type: telepathy
    field: f
`,
		"missing pattern": `
rules:
  - id: r1
    type: field_matches
    field: f
`,
		"bad regex": `
rules:
  - id: r1
    type: field_matches
    field: f
    pattern: "("
`,
		"threshold without bounds": `
rules:
  - id: r1
    type: numeric_threshold
    field: f
`,
		"duplicate id": `
rules:
  - id: r1
    type: field_present
    field: f
  - id: r1
    type: field_present
    field: g
`,
	}

	for name, catalog := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog([]byte(catalog))
			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}
