// Package extraction turns raw resume text into a structured career profile
// with a single model call.
package extraction

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/career-matcher/internal/llm"
	"github.com/jonathan/career-matcher/internal/schemas"
	"github.com/jonathan/career-matcher/internal/types"
)

// ExtractProfile extracts a structured profile from resume text.
//
// It issues exactly one model call and never retries: the caller owns retry
// policy. Callers are also responsible for validating resume length bounds
// before invoking. Every failure is typed, either an APICallError or a
// ParseError, because silently defaulting the profile would poison every
// downstream stage.
func ExtractProfile(ctx context.Context, client llm.Client, resumeText string) (*types.ResumeProfile, error) {
	prompt := llm.BuildExtractionPrompt(llm.ResumeProfileSchema(), resumeText)

	response, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "resume profile extraction failed", Cause: err}
	}

	if err := schemas.Validate(schemas.ResumeProfile, response); err != nil {
		return nil, &ParseError{Message: "extraction output failed schema validation", Cause: err}
	}

	var profile types.ResumeProfile
	if err := json.Unmarshal([]byte(response), &profile); err != nil {
		return nil, &ParseError{Message: "failed to unmarshal extraction output", Cause: err}
	}

	normalizeProfile(&profile)
	return &profile, nil
}

// normalizeProfile cleans up the model's output in place. Models drift on
// casing, duplicate entries, and numeric ranges no matter how firm the
// prompt is.
func normalizeProfile(p *types.ResumeProfile) {
	p.Skills = dedupeStrings(p.Skills)
	p.JobTitles = dedupeStrings(p.JobTitles)

	p.Education.Level = normalizeLevel(p.Education.Level)
	p.Education.Fields = dedupeStrings(p.Education.Fields)

	if p.ExperienceYears < 0 {
		p.ExperienceYears = 0
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 1 {
		p.Confidence = 1
	}
}

// dedupeStrings trims entries, drops empties, and removes case-insensitive
// duplicates keeping the first occurrence
func dedupeStrings(items []string) []string {
	if len(items) == 0 {
		return items
	}

	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}

// normalizeLevel lowercases an education level and joins words with
// underscores, so "High School" and "high_school" are the same token
func normalizeLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	return strings.Join(strings.Fields(level), "_")
}
