package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/recruitech/matchengine/internal/llm"
	"github.com/recruitech/matchengine/internal/logger"
	"github.com/recruitech/matchengine/internal/types"
)

// Options bound the external capability calls.
type Options struct {
	MaxRetries     int
	Timeout        time.Duration
	InitialBackoff time.Duration
}

// Extractor turns anonymized free text into an ordered sequence of skill
// mentions. The only blocking point is the llm.Client call; everything else
// is pure and request-scoped.
type Extractor struct {
	client   llm.Client
	synonyms *SynonymTable
	opts     Options
	logger   *zap.Logger
}

// New creates an Extractor. logger may be nil.
func New(client llm.Client, synonyms *SynonymTable, opts Options, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	return &Extractor{client: client, synonyms: synonyms, opts: opts, logger: logger}
}

// extractedSkill is the wire shape the model is asked to return.
type extractedSkill struct {
	Name             string   `json:"name"`
	RawText          string   `json:"raw_text"`
	Category         string   `json:"category"`
	Confidence       float64  `json:"confidence"`
	LastUsedYearsAgo *float64 `json:"last_used_years_ago,omitempty"`
}

type extractionResponse struct {
	Skills []extractedSkill `json:"skills"`
}

// Extract identifies skill phrases in cleanText and returns them normalized,
// deduplicated, and ordered by first appearance. Capability outages are
// retried with exponential backoff; when the retry budget is exhausted the
// error is ExtractionUnavailable and no partial result is returned.
func (e *Extractor) Extract(ctx context.Context, cleanText string, profileType types.ProfileType) ([]types.SkillMention, error) {
	if strings.TrimSpace(cleanText) == "" {
		return nil, &types.InputError{Message: "no text to extract skills from"}
	}

	prompt := buildPrompt(cleanText, profileType)

	var raw string
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()

		var err error
		raw, err = e.client.GenerateJSON(callCtx, prompt)
		return err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = e.opts.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(e.opts.MaxRetries)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		e.logger.Warn("skill extraction exhausted retries",
			zap.String("profile_type", string(profileType)),
			zap.Int("max_retries", e.opts.MaxRetries),
		)
		return nil, &types.ExtractionUnavailable{Cause: err}
	}

	var resp extractionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// The capability answered but not in a usable shape; from the
		// caller's perspective the capability is unavailable.
		return nil, &types.ExtractionUnavailable{Cause: fmt.Errorf("unparseable capability response: %w", err)}
	}

	mentions := e.normalize(resp.Skills)
	e.logger.Debug("extracted skills",
		zap.String("profile_type", string(profileType)),
		zap.String("input_preview", logger.TruncateForLog(cleanText, 80)),
		zap.Int("raw_count", len(resp.Skills)),
		zap.Int("normalized_count", len(mentions)),
	)
	return mentions, nil
}

// normalize folds names through the synonym table, drops invalid rows, and
// merges duplicates keeping the maximum confidence. Order of first appearance
// is preserved.
func (e *Extractor) normalize(skills []extractedSkill) []types.SkillMention {
	index := make(map[string]int)
	mentions := make([]types.SkillMention, 0, len(skills))

	for _, s := range skills {
		name := e.synonyms.Normalize(s.Name)
		if name == "" {
			continue
		}

		category, ok := parseCategory(s.Category)
		if !ok {
			continue
		}

		confidence := clamp01(s.Confidence)

		if i, seen := index[name]; seen {
			if confidence > mentions[i].Confidence {
				mentions[i].Confidence = confidence
			}
			if s.LastUsedYearsAgo != nil {
				existing := mentions[i].LastUsedYearsAgo
				if existing == nil || *s.LastUsedYearsAgo < *existing {
					mentions[i].LastUsedYearsAgo = s.LastUsedYearsAgo
				}
			}
			continue
		}

		rawText := s.RawText
		if rawText == "" {
			rawText = s.Name
		}

		index[name] = len(mentions)
		mentions = append(mentions, types.SkillMention{
			Name:             name,
			RawText:          rawText,
			Confidence:       confidence,
			Category:         category,
			LastUsedYearsAgo: s.LastUsedYearsAgo,
		})
	}

	return mentions
}

func parseCategory(s string) (types.SkillCategory, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HARD":
		return types.SkillHard, true
	case "SOFT":
		return types.SkillSoft, true
	default:
		return "", false
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
