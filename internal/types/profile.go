// Package types provides type definitions for structured data used throughout the career-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ResumeProfile represents the structured profile extracted from raw resume text
type ResumeProfile struct {
	Skills          []string  `json:"skills"`
	JobTitles       []string  `json:"job_titles"`
	Education       Education `json:"education"`
	ExperienceYears float64   `json:"experience_years"`
	Confidence      float64   `json:"confidence"`
}

// Education represents the highest education level and fields of study found in a resume
type Education struct {
	Level  string   `json:"level"`            // high_school, associate, bachelor, master, phd, or empty
	Fields []string `json:"fields,omitempty"` // e.g., ["Computer Science", "Economics"]
}

// PreferenceAnswers holds the five structured onboarding answers collected alongside the resume
type PreferenceAnswers struct {
	CareerGoals     string `json:"career_goals" validate:"required,min=10"`
	SkillsToDevelop string `json:"skills_to_develop" validate:"required,min=10"`
	WorkEnvironment string `json:"work_environment" validate:"required,min=10"`
	Compensation    string `json:"compensation" validate:"required,min=10"`
	Industries      string `json:"industries" validate:"required,min=10"`
}

// UserProfile combines the extracted resume profile with the preference answers
type UserProfile struct {
	Resume  *ResumeProfile     `json:"resume"`
	Answers *PreferenceAnswers `json:"answers"`
}

// ReadyForMatching reports whether both halves of the profile are present
func (p *UserProfile) ReadyForMatching() bool {
	return p != nil && p.Resume != nil && p.Answers != nil
}
