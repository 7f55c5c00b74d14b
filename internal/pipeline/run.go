// Package pipeline provides the high-level orchestration for a match run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/db"
	"github.com/jonathan/career-matcher/internal/embedding"
	"github.com/jonathan/career-matcher/internal/extraction"
	"github.com/jonathan/career-matcher/internal/llm"
	"github.com/jonathan/career-matcher/internal/observability"
	"github.com/jonathan/career-matcher/internal/ranking"
	"github.com/jonathan/career-matcher/internal/search"
	"github.com/jonathan/career-matcher/internal/types"
)

// Default per-stage timeouts. Extraction reads the whole resume, so it gets
// the longest budget.
const (
	DefaultExtractionTimeout = 60 * time.Second
	DefaultEmbeddingTimeout  = 30 * time.Second
)

// ProgressEvent represents a progress update during a match run
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Matcher bundles the long-lived collaborators a match run needs. One Matcher
// serves many concurrent runs: the corpus and engine are read-only and the
// clients are safe for concurrent use.
type Matcher struct {
	Corpus   *corpus.Corpus
	Engine   *search.Engine
	LLM      llm.Client
	Embedder embedding.Embedder
	DB       *db.DB // optional, nil disables persistence
}

// RunOptions holds per-run configuration
type RunOptions struct {
	TopK               int           // candidates requested from search, 0 selects the search default
	ExtractionTimeout  time.Duration // 0 selects DefaultExtractionTimeout
	EmbeddingTimeout   time.Duration // 0 selects DefaultEmbeddingTimeout
	RankingCallTimeout time.Duration // 0 selects the ranking default
	Verbose            bool
	OnProgress         ProgressCallback
}

// MatchResult is the successful outcome of a run
type MatchResult struct {
	Matches  []types.CareerMatch `json:"matches"`
	Metadata types.RunMetadata   `json:"metadata"`
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

// Run executes the full match pipeline: validate, extract, embed, search,
// rank, then assemble the response.
//
// Stage failures abort the run with a StageError; there is no degraded path,
// a run either completes every stage or fails. Validation failures return a
// *types.InputValidationError before any external call is made.
func (m *Matcher) Run(ctx context.Context, request *types.MatchRequest, opts RunOptions) (*MatchResult, error) {
	printer := observability.NewPrinter(os.Stdout)
	runStart := time.Now()

	fmt.Printf("Step 1/5: Validating input...\n")
	request.Normalize()
	if err := request.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	if opts.Verbose {
		fmt.Printf("[VERBOSE] Run ID: %s\n", runID)
	}

	if m.DB != nil {
		if err := m.DB.CreateRun(ctx, runID, utf8.RuneCountInString(request.ResumeText), m.Corpus.Version()); err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		}
	}

	var timings types.StageTimings

	fmt.Printf("Step 2/5: Extracting profile from resume...\n")
	extractionTimeout := opts.ExtractionTimeout
	if extractionTimeout <= 0 {
		extractionTimeout = DefaultExtractionTimeout
	}
	stageStart := time.Now()
	extractCtx, cancelExtract := context.WithTimeout(ctx, extractionTimeout)
	resume, err := extraction.ExtractProfile(extractCtx, m.LLM, request.ResumeText)
	cancelExtract()
	timings.ExtractionMs = time.Since(stageStart).Milliseconds()
	if err != nil {
		m.failRun(ctx, runID)
		return nil, &StageError{Stage: StageExtraction, Cause: err}
	}
	if opts.Verbose {
		printer.PrintResumeProfile(resume)
	}
	emitProgress(&opts, runID.String(), db.StepResumeProfile, db.CategoryExtraction,
		fmt.Sprintf("Extracted profile: %d skills, %d prior titles", len(resume.Skills), len(resume.JobTitles)), resume)
	m.saveArtifact(ctx, runID, db.StepResumeProfile, db.CategoryExtraction, resume)

	profile := &types.UserProfile{Resume: resume, Answers: &request.Answers}

	fmt.Printf("Step 3/5: Embedding query intents...\n")
	embeddingTimeout := opts.EmbeddingTimeout
	if embeddingTimeout <= 0 {
		embeddingTimeout = DefaultEmbeddingTimeout
	}
	stageStart = time.Now()
	texts := embedding.BuildQueryTexts(profile)
	embedCtx, cancelEmbed := context.WithTimeout(ctx, embeddingTimeout)
	vectors, err := embedding.EmbedQuery(embedCtx, m.Embedder, profile)
	cancelEmbed()
	timings.EmbeddingMs = time.Since(stageStart).Milliseconds()
	if err != nil {
		m.failRun(ctx, runID)
		return nil, &StageError{Stage: StageEmbedding, Cause: err}
	}
	if got, want := len(vectors.Task), m.Corpus.Dimensions(); got != want {
		m.failRun(ctx, runID)
		return nil, &StageError{
			Stage: StageEmbedding,
			Cause: fmt.Errorf("query dimensionality %d does not match corpus %d", got, want),
		}
	}
	emitProgress(&opts, runID.String(), db.StepQueryTexts, db.CategoryEmbedding, "Embedded three query intents", nil)
	m.saveArtifact(ctx, runID, db.StepQueryTexts, db.CategoryEmbedding, texts)

	fmt.Printf("Step 4/5: Searching corpus...\n")
	stageStart = time.Now()
	candidates := m.Engine.Search(vectors, opts.TopK)
	timings.SearchMs = time.Since(stageStart).Milliseconds()
	if opts.Verbose {
		printer.PrintCandidates(candidates)
	}
	emitProgress(&opts, runID.String(), db.StepCandidates, db.CategorySearch,
		fmt.Sprintf("Search returned %d candidates", len(candidates)), nil)
	m.saveArtifact(ctx, runID, db.StepCandidates, db.CategorySearch, candidates)

	fmt.Printf("Step 5/5: Evaluating candidates...\n")
	stageStart = time.Now()
	outcome, err := ranking.EvaluateCandidates(ctx, m.LLM, m.Corpus, candidates, profile, ranking.Options{
		CallTimeout: opts.RankingCallTimeout,
		OnEvaluated: func(evaluated, accepted int) {
			emitProgress(&opts, runID.String(), db.StepMatches, db.CategoryRanking,
				fmt.Sprintf("Evaluated %d candidates, %d accepted", evaluated, accepted), nil)
		},
	})
	timings.RankingMs = time.Since(stageStart).Milliseconds()
	if err != nil {
		m.failRun(ctx, runID)
		return nil, &StageError{Stage: StageRanking, Cause: err}
	}

	matches := m.assembleMatches(outcome.Matches, candidates)
	timings.TotalMs = time.Since(runStart).Milliseconds()

	result := &MatchResult{
		Matches: matches,
		Metadata: types.RunMetadata{
			RunID:           runID.String(),
			CorpusVersion:   m.Corpus.Version(),
			TotalCandidates: len(candidates),
			EvaluatedCount:  outcome.Evaluated,
			FinalMatchCount: len(matches),
			Timings:         timings,
		},
	}

	if opts.Verbose {
		printer.PrintMatches(matches)
		printer.PrintRunMetadata(&result.Metadata)
	}

	m.persistResult(ctx, runID, result)

	fmt.Printf("Done! %d matches from %d evaluations.\n", len(matches), outcome.Evaluated)
	return result, nil
}

// assembleMatches joins accepted matches with corpus display metadata and
// sorts them best first. The sort is stable, so equal scores keep their
// evaluation order.
func (m *Matcher) assembleMatches(accepted []types.RankedMatch, candidates []types.Candidate) []types.CareerMatch {
	similarity := make(map[string]float64, len(candidates))
	for _, candidate := range candidates {
		similarity[candidate.Slug] = candidate.Similarity
	}

	matches := make([]types.CareerMatch, 0, len(accepted))
	for _, match := range accepted {
		record, ok := m.Corpus.Get(match.Slug)
		if !ok {
			continue
		}
		matches = append(matches, types.CareerMatch{
			Slug:         record.Slug,
			Title:        record.Title,
			Category:     record.Category,
			MatchScore:   match.MatchScore,
			Rationale:    match.Rationale,
			Similarity:   similarity[match.Slug],
			MedianSalary: record.MedianSalary,
			AIResilience: record.AIResilience,
			JobZone:      record.JobZone,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

// saveArtifact persists a stage artifact when a database is configured.
// Persistence failures never fail the run.
func (m *Matcher) saveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) {
	if m.DB == nil {
		return
	}
	if err := m.DB.SaveArtifact(ctx, runID, step, category, content); err != nil {
		fmt.Printf("Warning: Failed to save %s artifact: %v\n", step, err)
	}
}

// failRun marks the database run failed when persistence is on
func (m *Matcher) failRun(ctx context.Context, runID uuid.UUID) {
	if m.DB == nil {
		return
	}
	_ = m.DB.CompleteRun(ctx, runID, db.StatusFailed, db.RunMetrics{})
}

// persistResult stores the final matches and completes the run record
func (m *Matcher) persistResult(ctx context.Context, runID uuid.UUID, result *MatchResult) {
	if m.DB == nil {
		return
	}

	rows := make([]db.MatchRow, 0, len(result.Matches))
	for i, match := range result.Matches {
		rows = append(rows, db.MatchRow{
			RunID:      runID,
			Rank:       i + 1,
			Slug:       match.Slug,
			Title:      match.Title,
			MatchScore: match.MatchScore,
			Rationale:  match.Rationale,
			Similarity: match.Similarity,
		})
	}
	if err := m.DB.SaveMatches(ctx, runID, rows); err != nil {
		fmt.Printf("Warning: Failed to save matches: %v\n", err)
	}
	m.saveArtifact(ctx, runID, db.StepMatches, db.CategoryRanking, result.Matches)

	_ = m.DB.CompleteRun(ctx, runID, db.StatusCompleted, db.RunMetrics{
		TotalCandidates: result.Metadata.TotalCandidates,
		EvaluatedCount:  result.Metadata.EvaluatedCount,
		MatchCount:      result.Metadata.FinalMatchCount,
		TotalMs:         result.Metadata.Timings.TotalMs,
	})
}
