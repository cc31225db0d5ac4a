// Package extraction derives normalized skill mentions from anonymized free
// text using the external language capability.
package extraction

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

// synonymCatalog is the on-disk shape of a synonym table.
type synonymCatalog struct {
	Version  string `yaml:"version"`
	Synonyms []struct {
		Canonical string   `yaml:"canonical"`
		Frequency int      `yaml:"frequency"`
		Variants  []string `yaml:"variants"`
	} `yaml:"synonyms"`
}

// SynonymTable collapses skill name variants onto canonical lowercase forms.
// Loaded once at startup and shared read-only across all pipeline instances.
type SynonymTable struct {
	version   string
	canonical map[string]string // folded variant → canonical form
	frequency map[string]int    // canonical form → corpus frequency
}

// LoadSynonyms reads a synonym catalog from path, or the embedded default
// catalog when path is empty.
func LoadSynonyms(path string) (*SynonymTable, error) {
	data := defaultSynonymsYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read synonym catalog: %w", err)
		}
	}
	return parseSynonyms(data)
}

func parseSynonyms(data []byte) (*SynonymTable, error) {
	var catalog synonymCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse synonym catalog: %w", err)
	}

	table := &SynonymTable{
		version:   catalog.Version,
		canonical: make(map[string]string),
		frequency: make(map[string]int),
	}

	for _, entry := range catalog.Synonyms {
		canonical := fold(entry.Canonical)
		if canonical == "" {
			continue
		}
		table.frequency[canonical] = entry.Frequency

		for _, variant := range append(entry.Variants, entry.Canonical) {
			folded := fold(variant)
			if folded == "" {
				continue
			}
			// A variant claimed by two canonicals collapses onto the form
			// with the higher aggregate corpus frequency.
			if existing, ok := table.canonical[folded]; ok {
				if table.frequency[existing] >= entry.Frequency {
					continue
				}
			}
			table.canonical[folded] = canonical
		}
	}

	return table, nil
}

// Version returns the catalog version string.
func (t *SynonymTable) Version() string {
	return t.version
}

// Normalize maps a raw skill phrase to its canonical lowercase form.
// Unknown phrases are returned case-folded with collapsed whitespace.
func (t *SynonymTable) Normalize(name string) string {
	folded := fold(name)
	if folded == "" {
		return ""
	}
	if canonical, ok := t.canonical[folded]; ok {
		return canonical
	}
	return folded
}

// fold lowercases and collapses internal whitespace.
func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
