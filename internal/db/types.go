package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a match run record
type Run struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	ResumeChars     int        `json:"resume_chars"`
	CorpusVersion   string     `json:"corpus_version"`
	TotalCandidates int        `json:"total_candidates"`
	EvaluatedCount  int        `json:"evaluated_count"`
	MatchCount      int        `json:"match_count"`
	TotalMs         int64      `json:"total_ms"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// MatchRow is one persisted match within a run
type MatchRow struct {
	RunID      uuid.UUID `json:"run_id"`
	Rank       int       `json:"rank"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	MatchScore int       `json:"match_score"`
	Rationale  string    `json:"rationale"`
	Similarity float64   `json:"similarity"`
}

// RunMetrics carries the counters recorded when a run completes
type RunMetrics struct {
	TotalCandidates int
	EvaluatedCount  int
	MatchCount      int
	TotalMs         int64
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepResumeProfile = "resume_profile"
	StepQueryTexts    = "query_texts"
	StepCandidates    = "candidates"
	StepMatches       = "matches"
)

// Artifact category constants
const (
	CategoryExtraction = "extraction"
	CategoryEmbedding  = "embedding"
	CategorySearch     = "search"
	CategoryRanking    = "ranking"
	CategoryLifecycle  = "lifecycle"
)
