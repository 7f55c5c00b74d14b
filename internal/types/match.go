// Package types provides type definitions for structured data used throughout the career-matcher system.
package types

// Candidate represents a corpus record surfaced by vector search, before LLM evaluation
type Candidate struct {
	Slug       string  `json:"slug"`
	Similarity float64 `json:"similarity"`
}

// RankedMatch represents a candidate accepted by the LLM ranker
type RankedMatch struct {
	Slug       string `json:"slug"`
	MatchScore int    `json:"match_score"` // 0-100
	Rationale  string `json:"rationale"`
}

// CareerMatch is a ranked match joined with display metadata from the corpus record.
// Display fields are for presentation only and never feed back into scoring.
type CareerMatch struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	MatchScore   int     `json:"match_score"`
	Rationale    string  `json:"rationale"`
	Similarity   float64 `json:"similarity"`
	MedianSalary int     `json:"median_salary,omitempty"`
	AIResilience string  `json:"ai_resilience,omitempty"`
	JobZone      int     `json:"job_zone,omitempty"`
}

// StageTimings records per-stage wall-clock durations for a pipeline run
type StageTimings struct {
	ExtractionMs int64 `json:"extraction_ms"`
	EmbeddingMs  int64 `json:"embedding_ms"`
	SearchMs     int64 `json:"search_ms"`
	RankingMs    int64 `json:"ranking_ms"`
	TotalMs      int64 `json:"total_ms"`
}

// RunMetadata describes what a pipeline run did, independent of its matches
type RunMetadata struct {
	RunID           string       `json:"run_id"`
	CorpusVersion   string       `json:"corpus_version"`
	TotalCandidates int          `json:"total_candidates"`
	EvaluatedCount  int          `json:"evaluated_count"`
	FinalMatchCount int          `json:"final_match_count"`
	Timings         StageTimings `json:"timings"`
}
