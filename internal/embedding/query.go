package embedding

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonathan/career-matcher/internal/prompts"
	"github.com/jonathan/career-matcher/internal/types"
)

// QueryTexts holds the three intent renderings of a user profile.
// Each one leans on different parts of the profile so the three corpus
// representations each get a query in their own register.
type QueryTexts struct {
	Task      string
	Narrative string
	Skills    string
}

// QueryVectors holds the embedded intent texts
type QueryVectors struct {
	Task      []float64
	Narrative []float64
	Skills    []float64
}

// BuildQueryTexts renders the three intent templates from a complete profile.
// Pure string assembly: no model call, deterministic for a given profile.
func BuildQueryTexts(profile *types.UserProfile) QueryTexts {
	resume := profile.Resume
	answers := profile.Answers

	data := map[string]string{
		"CareerGoals":       answers.CareerGoals,
		"Industries":        answers.Industries,
		"SkillsToDevelop":   answers.SkillsToDevelop,
		"WorkEnvironment":   answers.WorkEnvironment,
		"Compensation":      answers.Compensation,
		"JobTitles":         strings.Join(resume.JobTitles, ", "),
		"Skills":            strings.Join(resume.Skills, ", "),
		"ExperienceSummary": experienceSummary(resume),
	}

	return QueryTexts{
		Task:      prompts.Format(prompts.MustGet("query.json", "task-intent"), data),
		Narrative: prompts.Format(prompts.MustGet("query.json", "narrative-intent"), data),
		Skills:    prompts.Format(prompts.MustGet("query.json", "skills-intent"), data),
	}
}

// EmbedQuery renders the intent texts and embeds them in ONE batched call
func EmbedQuery(ctx context.Context, embedder Embedder, profile *types.UserProfile) (QueryVectors, error) {
	if !profile.ReadyForMatching() {
		return QueryVectors{}, &EmbedError{Message: "profile is missing resume or answers"}
	}

	texts := BuildQueryTexts(profile)

	vectors, err := embedder.EmbedTexts(ctx, []string{texts.Task, texts.Narrative, texts.Skills})
	if err != nil {
		return QueryVectors{}, err
	}
	if len(vectors) != 3 {
		return QueryVectors{}, &EmbedError{
			Message: "embedder returned " + strconv.Itoa(len(vectors)) + " vectors for 3 texts",
		}
	}

	return QueryVectors{
		Task:      vectors[0],
		Narrative: vectors[1],
		Skills:    vectors[2],
	}, nil
}

// experienceSummary compresses the resume half of the profile into one line
// for the narrative intent
func experienceSummary(resume *types.ResumeProfile) string {
	var parts []string

	if resume.ExperienceYears > 0 {
		part := strconv.FormatFloat(resume.ExperienceYears, 'f', -1, 64) + " years of experience"
		if len(resume.JobTitles) > 0 {
			part += " as " + strings.Join(resume.JobTitles, ", ")
		}
		parts = append(parts, part)
	} else if len(resume.JobTitles) > 0 {
		parts = append(parts, "experience as "+strings.Join(resume.JobTitles, ", "))
	}

	if resume.Education.Level != "" {
		edu := resume.Education.Level
		if len(resume.Education.Fields) > 0 {
			edu += " in " + strings.Join(resume.Education.Fields, ", ")
		}
		parts = append(parts, edu)
	}

	if len(parts) == 0 {
		return "early career, background not specified"
	}
	return strings.Join(parts, "; ")
}
