//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnswers() PreferenceAnswers {
	return PreferenceAnswers{
		CareerGoals:     "Move into a role where I design reliable backend systems",
		SkillsToDevelop: "Distributed systems, mentoring, technical writing",
		WorkEnvironment: "Small remote-first team with async communication",
		Compensation:    "Around 140k base, equity less important",
		Industries:      "Healthcare technology and climate",
	}
}

func validResume() string {
	return strings.Repeat("Senior backend engineer with Go and Postgres experience. ", 5)
}

func TestMatchRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *MatchRequest)
		wantErr    bool
		wantFields []string
	}{
		{
			name:    "valid request",
			mutate:  func(r *MatchRequest) {},
			wantErr: false,
		},
		{
			name:       "missing resume",
			mutate:     func(r *MatchRequest) { r.ResumeText = "" },
			wantErr:    true,
			wantFields: []string{"resume_text"},
		},
		{
			name:       "resume too short",
			mutate:     func(r *MatchRequest) { r.ResumeText = strings.Repeat("a", ResumeMinChars-1) },
			wantErr:    true,
			wantFields: []string{"resume_text"},
		},
		{
			name:    "resume exactly at minimum",
			mutate:  func(r *MatchRequest) { r.ResumeText = strings.Repeat("a", ResumeMinChars) },
			wantErr: false,
		},
		{
			name:    "resume exactly at maximum",
			mutate:  func(r *MatchRequest) { r.ResumeText = strings.Repeat("a", ResumeMaxChars) },
			wantErr: false,
		},
		{
			name:       "resume too long",
			mutate:     func(r *MatchRequest) { r.ResumeText = strings.Repeat("a", ResumeMaxChars+1) },
			wantErr:    true,
			wantFields: []string{"resume_text"},
		},
		{
			name:       "missing career goals",
			mutate:     func(r *MatchRequest) { r.Answers.CareerGoals = "" },
			wantErr:    true,
			wantFields: []string{"answers.career_goals"},
		},
		{
			name:       "answer below minimum length",
			mutate:     func(r *MatchRequest) { r.Answers.Industries = "tech" },
			wantErr:    true,
			wantFields: []string{"answers.industries"},
		},
		{
			name: "multiple failures reported together",
			mutate: func(r *MatchRequest) {
				r.ResumeText = "too short"
				r.Answers.CareerGoals = ""
				r.Answers.Compensation = "n/a"
			},
			wantErr:    true,
			wantFields: []string{"resume_text", "answers.career_goals", "answers.compensation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := MatchRequest{ResumeText: validResume(), Answers: validAnswers()}
			tt.mutate(&req)

			err := req.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var ive *InputValidationError
			require.ErrorAs(t, err, &ive)
			require.Len(t, ive.Fields, len(tt.wantFields))

			got := make([]string, 0, len(ive.Fields))
			for _, fe := range ive.Fields {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestMatchRequest_Normalize(t *testing.T) {
	req := MatchRequest{
		ResumeText: "   " + validResume() + " \n",
		Answers: PreferenceAnswers{
			CareerGoals:     "  lead a platform team eventually  ",
			SkillsToDevelop: "\tsystem design and Kubernetes\n",
			WorkEnvironment: " hybrid office ",
			Compensation:    " market rate for senior roles ",
			Industries:      " fintech and logistics ",
		},
	}

	req.Normalize()

	assert.Equal(t, validResume(), req.ResumeText)
	assert.Equal(t, "lead a platform team eventually", req.Answers.CareerGoals)
	assert.Equal(t, "system design and Kubernetes", req.Answers.SkillsToDevelop)
	assert.Equal(t, "hybrid office", req.Answers.WorkEnvironment)
	assert.Equal(t, "market rate for senior roles", req.Answers.Compensation)
	assert.Equal(t, "fintech and logistics", req.Answers.Industries)

	require.NoError(t, req.Validate())
}

func TestMatchRequest_ValidateCountsRunes(t *testing.T) {
	// 50 multibyte runes must satisfy the minimum even though the byte
	// count check would pass trivially
	req := MatchRequest{ResumeText: strings.Repeat("é", ResumeMinChars), Answers: validAnswers()}
	require.NoError(t, req.Validate())
}

func TestInputValidationError_Error(t *testing.T) {
	err := &InputValidationError{Fields: []FieldError{
		{Field: "resume_text", Message: "is required"},
		{Field: "answers.career_goals", Message: "must be at least 10 characters"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "invalid input")
	assert.Contains(t, msg, "resume_text is required")
	assert.Contains(t, msg, "answers.career_goals")
}
