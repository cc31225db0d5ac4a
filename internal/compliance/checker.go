package compliance

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/types"
)

// Checker evaluates a rule catalog against candidate profiles. Rules are
// independent; verdicts preserve the catalog's declared order. A missing or
// unevaluable field yields WARNING, never FAIL: absence of information is not
// evidence of non-compliance.
type Checker struct {
	catalog *Catalog
	logger  *zap.Logger
}

// NewChecker creates a Checker over a loaded catalog. logger may be nil.
func NewChecker(catalog *Catalog, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{catalog: catalog, logger: logger}
}

// Check evaluates every rule against the candidate. Pure and non-blocking.
func (c *Checker) Check(candidate *types.CandidateProfile) types.ComplianceReport {
	report := make(types.ComplianceReport, 0, len(c.catalog.Rules))
	for i := range c.catalog.Rules {
		report = append(report, evaluate(&c.catalog.Rules[i], candidate.Attributes))
	}

	c.logger.Debug("compliance evaluated",
		zap.String("catalog_version", c.catalog.Version),
		zap.Int("rules", len(report)),
		zap.Bool("failed", report.HasFailure()),
	)
	return report
}

// evaluate dispatches on the rule variant.
func evaluate(rule *Rule, attributes map[string]string) types.ComplianceVerdict {
	value, ok := attributes[rule.Field]
	if !ok || strings.TrimSpace(value) == "" {
		return verdict(rule, types.StatusWarning,
			fmt.Sprintf("field %q not provided; rule cannot be evaluated", rule.Field))
	}
	value = strings.TrimSpace(value)

	switch rule.Type {
	case RuleFieldPresent:
		if isNegation(value) {
			return verdict(rule, types.StatusFail,
				fmt.Sprintf("field %q is explicitly negative (%q)", rule.Field, value))
		}
		return verdict(rule, types.StatusPass,
			fmt.Sprintf("field %q is present", rule.Field))

	case RuleFieldMatches:
		if rule.compiled.MatchString(value) {
			return verdict(rule, types.StatusPass,
				fmt.Sprintf("field %q matches the required pattern", rule.Field))
		}
		return verdict(rule, types.StatusFail,
			fmt.Sprintf("field %q does not match the required pattern", rule.Field))

	case RuleNumericThreshold:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return verdict(rule, types.StatusWarning,
				fmt.Sprintf("field %q is not numeric; rule cannot be evaluated", rule.Field))
		}
		if rule.Min != nil && number < *rule.Min {
			return verdict(rule, types.StatusFail,
				fmt.Sprintf("field %q value %v is below the minimum %v", rule.Field, number, *rule.Min))
		}
		if rule.Max != nil && number > *rule.Max {
			return verdict(rule, types.StatusFail,
				fmt.Sprintf("field %q value %v is above the maximum %v", rule.Field, number, *rule.Max))
		}
		return verdict(rule, types.StatusPass,
			fmt.Sprintf("field %q value %v is within bounds", rule.Field, number))
	}

	// Unknown types are rejected at catalog load; reaching here means the
	// catalog was mutated, which never happens.
	return verdict(rule, types.StatusWarning, "rule type not evaluable")
}

func verdict(rule *Rule, status types.ComplianceStatus, detail string) types.ComplianceVerdict {
	explanation := detail
	if rule.Description != "" {
		explanation = rule.Description + ": " + detail
	}
	return types.ComplianceVerdict{RuleID: rule.ID, Status: status, Explanation: explanation}
}

// isNegation reports whether a present value explicitly denies the fact.
func isNegation(value string) bool {
	switch strings.ToLower(value) {
	case "no", "false", "none", "n/a":
		return true
	}
	return false
}
