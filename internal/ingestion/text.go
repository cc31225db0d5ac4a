package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTagPattern = regexp.MustCompile(`(?i)</?(?:html|body|div|p|br|ul|ol|li|span|h[1-6]|table|strong|em|a)\b`)

// Sanitize reduces a raw document to plain text. HTML payloads are stripped
// of markup (script and style content dropped entirely), then whitespace is
// normalized. Plain text passes through normalization only.
func Sanitize(content string) string {
	if htmlTagPattern.MatchString(content) {
		content = stripHTML(content)
	}
	return CleanText(content)
}

// stripHTML extracts the visible text of an HTML fragment.
func stripHTML(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		// Not parseable as HTML after all; keep the original text.
		return content
	}
	doc.Find("script, style, noscript").Remove()

	// Block-level nodes become lines so headings and list items keep their
	// boundaries after text extraction.
	var sb strings.Builder
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, div").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Clone().Children().Remove().End().Text())
		if text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})
	if sb.Len() > 0 {
		return sb.String()
	}
	return doc.Text()
}

// CleanText normalizes line endings and whitespace while preserving line
// structure.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blanks++
			if blanks > 1 {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
