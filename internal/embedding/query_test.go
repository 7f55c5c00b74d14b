package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-matcher/internal/types"
)

// mockEmbedder lets tests control embedding behavior
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float64, error)
	calls          int
	lastTexts      []string
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	m.calls++
	m.lastTexts = texts
	return m.embedTextsFunc(ctx, texts)
}

func testProfile() *types.UserProfile {
	return &types.UserProfile{
		Resume: &types.ResumeProfile{
			Skills:    []string{"Go", "PostgreSQL"},
			JobTitles: []string{"Backend Engineer", "SRE"},
			Education: types.Education{
				Level:  "bachelor",
				Fields: []string{"Computer Science"},
			},
			ExperienceYears: 6,
			Confidence:      0.9,
		},
		Answers: &types.PreferenceAnswers{
			CareerGoals:     "Design resilient data platforms",
			SkillsToDevelop: "Stream processing and team leadership",
			WorkEnvironment: "Remote-first, focused teams",
			Compensation:    "Senior engineer market rate",
			Industries:      "Climate and energy",
		},
	}
}

func TestBuildQueryTexts(t *testing.T) {
	texts := BuildQueryTexts(testProfile())

	// Task intent leans on goals, industries, titles, and growth skills
	assert.Contains(t, texts.Task, "Design resilient data platforms")
	assert.Contains(t, texts.Task, "Climate and energy")
	assert.Contains(t, texts.Task, "Backend Engineer, SRE")
	assert.Contains(t, texts.Task, "Stream processing and team leadership")

	// Narrative intent leans on environment, goals, compensation, background
	assert.Contains(t, texts.Narrative, "Remote-first, focused teams")
	assert.Contains(t, texts.Narrative, "Design resilient data platforms")
	assert.Contains(t, texts.Narrative, "Senior engineer market rate")
	assert.Contains(t, texts.Narrative, "6 years of experience")
	assert.Contains(t, texts.Narrative, "bachelor in Computer Science")

	// Skills intent leans on current skills, growth skills, and titles
	assert.Contains(t, texts.Skills, "Go, PostgreSQL")
	assert.Contains(t, texts.Skills, "Stream processing and team leadership")
	assert.Contains(t, texts.Skills, "Backend Engineer, SRE")
}

func TestBuildQueryTexts_Deterministic(t *testing.T) {
	first := BuildQueryTexts(testProfile())
	second := BuildQueryTexts(testProfile())
	assert.Equal(t, first, second)
}

func TestEmbedQuery_SingleBatchedCall(t *testing.T) {
	mock := &mockEmbedder{
		embedTextsFunc: func(_ context.Context, texts []string) ([][]float64, error) {
			vectors := make([][]float64, len(texts))
			for i := range texts {
				vectors[i] = []float64{float64(i), 1, 0}
			}
			return vectors, nil
		},
	}

	vectors, err := EmbedQuery(context.Background(), mock, testProfile())
	require.NoError(t, err)

	assert.Equal(t, 1, mock.calls, "all three intents must share one embedding call")
	require.Len(t, mock.lastTexts, 3)

	// Vector order follows text order: task, narrative, skills
	assert.Equal(t, []float64{0, 1, 0}, vectors.Task)
	assert.Equal(t, []float64{1, 1, 0}, vectors.Narrative)
	assert.Equal(t, []float64{2, 1, 0}, vectors.Skills)
}

func TestEmbedQuery_EmbedderFailure(t *testing.T) {
	mock := &mockEmbedder{
		embedTextsFunc: func(_ context.Context, _ []string) ([][]float64, error) {
			return nil, &EmbedError{Message: "upstream unavailable"}
		},
	}

	_, err := EmbedQuery(context.Background(), mock, testProfile())
	require.Error(t, err)

	var embedErr *EmbedError
	require.ErrorAs(t, err, &embedErr)
}

func TestEmbedQuery_WrongVectorCount(t *testing.T) {
	mock := &mockEmbedder{
		embedTextsFunc: func(_ context.Context, _ []string) ([][]float64, error) {
			return [][]float64{{1, 0}}, nil
		},
	}

	_, err := EmbedQuery(context.Background(), mock, testProfile())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 texts")
}

func TestEmbedQuery_IncompleteProfile(t *testing.T) {
	mock := &mockEmbedder{
		embedTextsFunc: func(_ context.Context, _ []string) ([][]float64, error) {
			t.Fatal("embedder must not be called for an incomplete profile")
			return nil, nil
		},
	}

	profile := testProfile()
	profile.Resume = nil

	_, err := EmbedQuery(context.Background(), mock, profile)
	require.Error(t, err)
	assert.Equal(t, 0, mock.calls)
}

func TestExperienceSummary(t *testing.T) {
	tests := []struct {
		name   string
		resume types.ResumeProfile
		want   string
	}{
		{
			name: "full background",
			resume: types.ResumeProfile{
				JobTitles:       []string{"Nurse"},
				Education:       types.Education{Level: "associate", Fields: []string{"Nursing"}},
				ExperienceYears: 4,
			},
			want: "4 years of experience as Nurse; associate in Nursing",
		},
		{
			name: "titles without years",
			resume: types.ResumeProfile{
				JobTitles: []string{"Barista", "Shift Lead"},
			},
			want: "experience as Barista, Shift Lead",
		},
		{
			name: "education only",
			resume: types.ResumeProfile{
				Education: types.Education{Level: "master", Fields: []string{"Biology"}},
			},
			want: "master in Biology",
		},
		{
			name:   "empty resume",
			resume: types.ResumeProfile{},
			want:   "early career, background not specified",
		},
		{
			name: "fractional years",
			resume: types.ResumeProfile{
				ExperienceYears: 2.5,
			},
			want: "2.5 years of experience",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, experienceSummary(&tt.resume))
		})
	}
}

func TestEmbedError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &EmbedError{Message: "request failed", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "request failed")
}
