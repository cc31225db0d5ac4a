// Package anonymize strips personally identifiable information from raw text
// before any other component consumes it.
//
// Every detected span is replaced with a stable placeholder of the form
// <CATEGORY_n>. The placeholder alphabet is disjoint from any legitimate
// skill or experience vocabulary, so nothing downstream can re-identify a
// person through pattern matching. The placeholder map lives only in memory
// for the duration of a request and is never logged or serialized.
//
// When a detector cannot decide whether a span is PII it redacts anyway:
// over-redaction is always preferred to leakage.
package anonymize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/types"
)

// Category names appear inside placeholder tokens, e.g. <EMAIL_1>.
type Category string

const (
	CategoryEmail   Category = "EMAIL"
	CategoryPhoto   Category = "PHOTO"
	CategoryID      Category = "ID"
	CategoryDOB     Category = "DOB"
	CategoryPhone   Category = "PHONE"
	CategoryAddress Category = "ADDRESS"
	CategoryName    Category = "NAME"
)

// detector is one compiled PII pattern. When group is non-zero only that
// capture group is replaced, which lets labeled patterns ("Name: John Smith")
// keep the label and redact the value. accept can veto a raw regex hit.
type detector struct {
	category Category
	pattern  *regexp.Regexp
	group    int
	accept   func(span string) bool
}

// Detectors run in declared order. Email and photo references go first so
// their digit runs are consumed before the looser phone pattern sees them.
var detectors = []detector{
	{
		category: CategoryEmail,
		pattern:  regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
	},
	{
		category: CategoryPhoto,
		pattern:  regexp.MustCompile(`(?i)(?:https?://\S+|[\w\-./]+)\.(?:jpe?g|png|gif|webp|bmp)\b`),
	},
	{
		// US SSN.
		category: CategoryID,
		pattern:  regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	},
	{
		// Spanish DNI/NIE style: eight digits and a control letter.
		category: CategoryID,
		pattern:  regexp.MustCompile(`\b\d{8}[A-Za-z]\b`),
	},
	{
		category: CategoryID,
		pattern:  regexp.MustCompile(`(?i)\b(?:national id|passport|dni|nie|ssn)\s*(?:no\.?|number|#)?\s*[:#]?\s*([A-Za-z0-9\-]{5,20})`),
		group:    1,
	},
	{
		category: CategoryDOB,
		pattern:  regexp.MustCompile(`(?i)\b(?:born|birth date|date of birth|dob|fecha de nacimiento)\b[^\n:]*:?\s*([0-9]{1,4}[./\-][0-9]{1,2}[./\-][0-9]{1,4})`),
		group:    1,
	},
	{
		category: CategoryDOB,
		pattern:  regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}[./]\d{4}\b`),
		accept:   plausibleDate,
	},
	{
		category: CategoryPhone,
		pattern:  regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{1,4}\)[\s.\-]?)?\d{2,4}(?:[\s.\-]\d{2,4}){1,4}\b`),
		accept:   plausiblePhone,
	},
	{
		category: CategoryPhone,
		pattern:  regexp.MustCompile(`\+?\d{7,15}\b`),
		accept:   plausiblePhone,
	},
	{
		category: CategoryAddress,
		pattern:  regexp.MustCompile(`(?i)\b(?:address|dirección|direccion)\s*:\s*([^<\n][^\n]*)`),
		group:    1,
	},
	{
		// Street-style address: number followed by a capitalized street name
		// and a street suffix. Ambiguous by nature; redact anyway.
		category: CategoryAddress,
		pattern:  regexp.MustCompile(`\b\d{1,5}\s+[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*){0,3}\s+(?:Street|St\.?|Avenue|Ave\.?|Road|Rd\.?|Boulevard|Blvd\.?|Lane|Ln\.?|Drive|Dr\.?)\b`),
	},
	{
		category: CategoryName,
		pattern:  regexp.MustCompile(`\b(?i:name|nombre|full name)[ \t]*:[ \t]*([A-ZÀ-Ý][a-zà-ÿ'\-]+(?:[ \t]+[A-ZÀ-Ý][a-zà-ÿ'\-]+){1,3})`),
		group:    1,
	},
	{
		category: CategoryName,
		pattern:  regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr|Prof)\.?[ \t]+[A-ZÀ-Ý][a-zà-ÿ'\-]+(?:[ \t]+[A-ZÀ-Ý][a-zà-ÿ'\-]+)?`),
	},
}

// plausibleDate rejects numeric triples that cannot be a calendar date.
func plausibleDate(span string) bool {
	parts := regexp.MustCompile(`[./]`).Split(span, -1)
	if len(parts) != 3 {
		return false
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	// Accept both day-first and month-first conventions.
	if day > 31 || month > 31 {
		return false
	}
	if day > 12 && month > 12 {
		return false
	}
	return true
}

// plausiblePhone requires a realistic digit count and rejects spans that look
// like year ranges ("2019-2023"), which are common in experience sections.
func plausiblePhone(span string) bool {
	digits := 0
	for _, r := range span {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return false
	}
	trimmed := strings.TrimSpace(span)
	if m := regexp.MustCompile(`^(\d{4})\s*[\-–]\s*(\d{4})$`).FindStringSubmatch(trimmed); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		if from >= 1900 && from <= 2100 && to >= 1900 && to <= 2100 {
			return false
		}
	}
	// ISO dates (employment periods, report timestamps) are not phones.
	if regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(trimmed) {
		return false
	}
	return true
}

// Anonymizer replaces PII spans with placeholders. Safe for concurrent use;
// all state is per-call.
type Anonymizer struct {
	logger *zap.Logger
}

// New creates an Anonymizer. logger may be nil.
func New(logger *zap.Logger) *Anonymizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Anonymizer{logger: logger}
}

// Anonymize replaces every detected PII span in text with a stable placeholder
// and returns the cleaned text together with the placeholder→original map.
// The map must never leave the request scope. Anonymizing already-clean text
// returns it unchanged.
func (a *Anonymizer) Anonymize(text string) (string, map[string]string, error) {
	if !utf8.ValidString(text) {
		return "", nil, &types.InputError{Message: "payload is not valid UTF-8 text"}
	}

	placeholders := make(map[string]string)
	seen := make(map[string]string) // category+original → placeholder
	counters := make(map[Category]int)

	clean := text
	for _, det := range detectors {
		clean = replaceSpans(clean, det, placeholders, seen, counters)
	}

	if len(placeholders) > 0 {
		fields := make([]zap.Field, 0, len(counters))
		for cat, n := range counters {
			fields = append(fields, zap.Int(strings.ToLower(string(cat)), n))
		}
		// Counts only. Raw matches must never be logged.
		a.logger.Debug("anonymized pii spans", fields...)
	}

	return clean, placeholders, nil
}

// ContainsPII reports whether any detector fires on text. Used as the final
// audit over built reports.
func (a *Anonymizer) ContainsPII(text string) bool {
	for _, det := range detectors {
		if findAccepted(text, det) {
			return true
		}
	}
	return false
}

// replaceSpans rewrites every accepted span of one detector, reusing the
// placeholder for repeated identical spans.
func replaceSpans(text string, det detector, placeholders, seen map[string]string, counters map[Category]int) string {
	matches := det.pattern.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if det.group > 0 {
			start, end = m[2*det.group], m[2*det.group+1]
			if start < 0 {
				continue
			}
		}
		span := text[start:end]
		if det.accept != nil && !det.accept(span) {
			continue
		}

		key := string(det.category) + "\x00" + span
		placeholder, ok := seen[key]
		if !ok {
			counters[det.category]++
			placeholder = fmt.Sprintf("<%s_%d>", det.category, counters[det.category])
			seen[key] = placeholder
			placeholders[placeholder] = span
		}

		sb.WriteString(text[last:start])
		sb.WriteString(placeholder)
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func findAccepted(text string, det detector) bool {
	matches := det.pattern.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		start, end := m[0], m[1]
		if det.group > 0 {
			start, end = m[2*det.group], m[2*det.group+1]
			if start < 0 {
				continue
			}
		}
		if det.accept == nil || det.accept(text[start:end]) {
			return true
		}
	}
	return false
}
