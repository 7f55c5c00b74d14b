// Package ranking admits careers into the final match list, one model
// scoring call per candidate.
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/llm"
	"github.com/jonathan/career-matcher/internal/prompts"
	"github.com/jonathan/career-matcher/internal/schemas"
	"github.com/jonathan/career-matcher/internal/types"
)

const (
	// AcceptanceThreshold is the minimum score that admits a candidate,
	// inclusive: exactly 60 is a match.
	AcceptanceThreshold = 60

	// AcceptedQuota caps how many matches one run collects. The loop stops
	// the moment the quota fills, unevaluated candidates stay unevaluated.
	AcceptedQuota = 7

	// DefaultCallTimeout bounds a single scoring call
	DefaultCallTimeout = 25 * time.Second
)

// ScoreResult contains the model's verdict on one candidate
type ScoreResult struct {
	Score     int    // 0-100 match score
	Rationale string // Brief explanation addressed to the candidate
}

// matchScoreResponse represents the expected JSON response from the model
type matchScoreResponse struct {
	MatchScore float64 `json:"match_score"`
	Rationale  string  `json:"rationale"`
}

// Options tunes the admission loop. Zero values select the package defaults.
type Options struct {
	Threshold   int
	Quota       int
	CallTimeout time.Duration

	// OnEvaluated is called after each scoring attempt with running totals,
	// for progress reporting
	OnEvaluated func(evaluated, accepted int)
}

// Outcome reports what the admission loop did
type Outcome struct {
	Matches   []types.RankedMatch // accepted matches in evaluation order
	Evaluated int                 // scoring calls attempted, including failed ones
}

// ScoreCandidate issues one scoring call for a single career and returns the
// raw verdict. Scores outside 0-100 are clamped. Callers decide what to do
// with the score; a low one is a normal outcome, not an error.
func ScoreCandidate(ctx context.Context, client llm.Client, career *corpus.CareerRecord, profile *types.UserProfile) (*ScoreResult, error) {
	prompt := buildScorePrompt(career, profile)

	jsonResp, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	jsonResp = llm.CleanJSONBlock(jsonResp)

	if err := schemas.Validate(schemas.MatchScore, jsonResp); err != nil {
		return nil, fmt.Errorf("scoring output failed validation: %w", err)
	}

	var response matchScoreResponse
	if err := json.Unmarshal([]byte(jsonResp), &response); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w (content: %s)", err, jsonResp)
	}

	score := int(math.Round(response.MatchScore))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &ScoreResult{
		Score:     score,
		Rationale: strings.TrimSpace(response.Rationale),
	}, nil
}

// EvaluateCandidates runs the admission loop: candidates are scored in the
// order given, one at a time, until the quota fills or the list runs out.
//
// The input order is the similarity ranking from search and the loop must
// respect it. Evaluating candidates concurrently would fill the quota with
// whichever calls happened to return first, which is a different (and
// nondeterministic) result set.
//
// A failed or timed-out scoring call rejects that one candidate and the loop
// moves on. By this stage the expensive extraction and embedding work is
// already spent, so one bad evaluation should not deny the whole run.
// Cancellation of the parent context does abort the loop, returning the
// matches collected so far alongside the context error.
func EvaluateCandidates(ctx context.Context, client llm.Client, corp *corpus.Corpus, candidates []types.Candidate, profile *types.UserProfile, opts Options) (*Outcome, error) {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = AcceptanceThreshold
	}
	quota := opts.Quota
	if quota <= 0 {
		quota = AcceptedQuota
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	outcome := &Outcome{}

	for i := range candidates {
		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		default:
		}

		career, ok := corp.Get(candidates[i].Slug)
		if !ok {
			// candidates come from a search over this same corpus, so a miss
			// is a bug upstream; skip rather than abort
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		result, err := ScoreCandidate(callCtx, client, career, profile)
		cancel()
		outcome.Evaluated++

		if err == nil && result.Score >= threshold {
			outcome.Matches = append(outcome.Matches, types.RankedMatch{
				Slug:       career.Slug,
				MatchScore: result.Score,
				Rationale:  result.Rationale,
			})
		}

		if opts.OnEvaluated != nil {
			opts.OnEvaluated(outcome.Evaluated, len(outcome.Matches))
		}

		if len(outcome.Matches) >= quota {
			break
		}
	}

	return outcome, nil
}

// buildScorePrompt renders the scoring prompt for one candidate career
func buildScorePrompt(career *corpus.CareerRecord, profile *types.UserProfile) string {
	resume := profile.Resume
	answers := profile.Answers

	data := map[string]string{
		"CareerTitle":       career.Title,
		"CareerCategory":    orNotSpecified(career.Category),
		"CareerDescription": orNotSpecified(career.Description),
		"CareerTasks":       bulletList(career.Tasks),
		"CareerSkills":      bulletList(career.Skills),
		"Skills":            orNotSpecified(strings.Join(resume.Skills, ", ")),
		"JobTitles":         orNotSpecified(strings.Join(resume.JobTitles, ", ")),
		"Education":         formatEducation(resume.Education),
		"ExperienceYears":   strconv.FormatFloat(resume.ExperienceYears, 'f', -1, 64),
		"CareerGoals":       answers.CareerGoals,
		"SkillsToDevelop":   answers.SkillsToDevelop,
		"WorkEnvironment":   answers.WorkEnvironment,
		"Compensation":      answers.Compensation,
		"Industries":        answers.Industries,
	}

	system := prompts.MustGet("ranking.json", "score-career-match-system")
	body := prompts.Format(prompts.MustGet("ranking.json", "score-career-match"), data)
	return system + "\n\n" + body
}

func formatEducation(education types.Education) string {
	if education.Level == "" && len(education.Fields) == 0 {
		return "Not specified"
	}
	if len(education.Fields) == 0 {
		return education.Level
	}
	if education.Level == "" {
		return "studied " + strings.Join(education.Fields, ", ")
	}
	return education.Level + " in " + strings.Join(education.Fields, ", ")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- Not specified"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
