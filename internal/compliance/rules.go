// Package compliance evaluates regulatory and eligibility rules against
// candidate profiles.
//
// Rules are a closed set of tagged variants evaluated by a single dispatcher;
// there is no open-ended predicate execution. The catalog is versioned,
// loaded once at startup, and shared read-only across all pipeline instances.
package compliance

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/recruitech/matchengine/internal/config"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleType tags one of the supported rule variants.
type RuleType string

const (
	RuleFieldPresent     RuleType = "field_present"
	RuleFieldMatches     RuleType = "field_matches"
	RuleNumericThreshold RuleType = "numeric_threshold"
)

// Rule is one predicate over normalized candidate fields.
type Rule struct {
	ID          string   `yaml:"id"`
	Type        RuleType `yaml:"type"`
	Field       string   `yaml:"field"`
	Pattern     string   `yaml:"pattern,omitempty"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Description string   `yaml:"description"`

	compiled *regexp.Regexp
}

// Catalog is an ordered, versioned rule set.
type Catalog struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// LoadCatalog reads a rule catalog from path, or the embedded default when
// path is empty. An empty or malformed catalog is a configuration error and
// fatal at startup.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultRulesYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &config.ConfigurationError{Field: "rules", Message: err.Error()}
		}
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, &config.ConfigurationError{Field: "rules", Message: err.Error()}
	}

	if len(catalog.Rules) == 0 {
		return nil, &config.ConfigurationError{Field: "rules", Message: "rule catalog is empty"}
	}

	seen := make(map[string]bool, len(catalog.Rules))
	for i := range catalog.Rules {
		rule := &catalog.Rules[i]
		if rule.ID == "" {
			return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %d has no id", i)}
		}
		if seen[rule.ID] {
			return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("duplicate rule id %q", rule.ID)}
		}
		seen[rule.ID] = true

		if rule.Field == "" {
			return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %q has no field", rule.ID)}
		}

		switch rule.Type {
		case RuleFieldPresent:
			// no extra parameters
		case RuleFieldMatches:
			if rule.Pattern == "" {
				return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %q has no pattern", rule.ID)}
			}
			compiled, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %q pattern: %v", rule.ID, err)}
			}
			rule.compiled = compiled
		case RuleNumericThreshold:
			if rule.Min == nil && rule.Max == nil {
				return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %q needs min or max", rule.ID)}
			}
		default:
			return nil, &config.ConfigurationError{Field: "rules", Message: fmt.Sprintf("rule %q has unknown type %q", rule.ID, rule.Type)}
		}
	}

	return &catalog, nil
}
