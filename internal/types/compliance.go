package types

// ComplianceStatus is the outcome of a single rule evaluation.
type ComplianceStatus string

const (
	StatusPass    ComplianceStatus = "PASS"
	StatusFail    ComplianceStatus = "FAIL"
	StatusWarning ComplianceStatus = "WARNING"
)

// ComplianceVerdict is the result of evaluating one rule against a candidate.
type ComplianceVerdict struct {
	RuleID      string           `json:"rule_id"`
	Status      ComplianceStatus `json:"status"`
	Explanation string           `json:"explanation"`
}

// ComplianceReport preserves the declared rule order.
type ComplianceReport []ComplianceVerdict

// HasFailure reports whether any verdict is a FAIL. A single FAIL
// disqualifies the candidate regardless of numeric score.
func (r ComplianceReport) HasFailure() bool {
	for _, v := range r {
		if v.Status == StatusFail {
			return true
		}
	}
	return false
}
