package extraction

import (
	"fmt"
	"strings"

	"github.com/recruitech/matchengine/internal/types"
)

// buildPrompt constructs the skill extraction prompt. The input text is
// already anonymized; the model never sees raw PII.
func buildPrompt(cleanText string, profileType types.ProfileType) string {
	var sb strings.Builder

	switch profileType {
	case types.ProfileVacancy:
		sb.WriteString("You are an expert job vacancy analyst. Identify every skill the vacancy text asks for.\n")
	default:
		sb.WriteString("You are an expert resume analyst. Identify every skill the candidate text demonstrates.\n")
	}
	sb.WriteString("Classify each skill as HARD (technical, verifiable competency) or SOFT (interpersonal or behavioral competency).\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	sb.WriteString(`{
  "skills": [
    {
      "name": string,                 // short canonical skill name
      "raw_text": string,             // the exact phrase from the input
      "category": "HARD" | "SOFT",
      "confidence": number,           // 0.0 to 1.0
      "last_used_years_ago": number   // optional, only when the text dates the skill
    }
  ]
}`)
	sb.WriteString("\n\nIMPORTANT:\n")
	sb.WriteString("- Extract skills directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Ignore placeholder tokens like <EMAIL_1> or <NAME_2>; they are never skills.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString(fmt.Sprintf("Input text:\n\"\"\"\n%s\n\"\"\"\n", cleanText))

	return sb.String()
}
