// Package db provides PostgreSQL persistence for match runs.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an operation targets a run that does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records the start of a match run. The caller supplies the run ID
// so runs are identifiable even when persistence is disabled.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, resumeChars int, corpusVersion string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO match_runs (id, status, resume_chars, corpus_version)
		 VALUES ($1, $2, $3, $4)`,
		runID, StatusRunning, resumeChars, corpusVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a run as finished and records its counters
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, metrics RunMetrics) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE match_runs
		 SET status = $1, total_candidates = $2, evaluated_count = $3,
		     match_count = $4, total_ms = $5, completed_at = NOW()
		 WHERE id = $6`,
		status, metrics.TotalCandidates, metrics.EvaluatedCount, metrics.MatchCount, metrics.TotalMs, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveMatches stores the final match list for a run, replacing any earlier
// rows for the same run
func (db *DB) SaveMatches(ctx context.Context, runID uuid.UUID, matches []MatchRow) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM match_results WHERE run_id = $1`, runID,
	); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}

	for _, match := range matches {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO match_results (run_id, rank, slug, title, match_score, rationale, similarity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			runID, match.Rank, match.Slug, match.Title, match.MatchScore, match.Rationale, match.Similarity,
		)
		if err != nil {
			return fmt.Errorf("failed to save match %s: %w", match.Slug, err)
		}
	}
	return nil
}

// GetRunMatches retrieves the persisted matches for a run, best first
func (db *DB) GetRunMatches(ctx context.Context, runID uuid.UUID) ([]MatchRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, rank, slug, title, match_score, rationale, similarity
		 FROM match_results WHERE run_id = $1 ORDER BY rank ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRow
	for rows.Next() {
		var match MatchRow
		if err := rows.Scan(&match.RunID, &match.Rank, &match.Slug, &match.Title,
			&match.MatchScore, &match.Rationale, &match.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// SaveArtifact stores a JSON artifact for a match run
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, category, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, content = $4, created_at = NOW()`,
		runID, step, category, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// GetRun retrieves a match run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, status, resume_chars, corpus_version, total_candidates,
		        evaluated_count, match_count, total_ms, created_at, completed_at
		 FROM match_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Status, &run.ResumeChars, &run.CorpusVersion, &run.TotalCandidates,
		&run.EvaluatedCount, &run.MatchCount, &run.TotalMs, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent match runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, status, resume_chars, corpus_version, total_candidates,
		        evaluated_count, match_count, total_ms, created_at, completed_at
		 FROM match_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Status, &run.ResumeChars, &run.CorpusVersion, &run.TotalCandidates,
			&run.EvaluatedCount, &run.MatchCount, &run.TotalMs, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a match run and its results (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM match_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}
