package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-matcher/internal/embedding"
	"github.com/jonathan/career-matcher/internal/schemas"
)

// SourceCareer is one career in the builder's input file: text and display
// metadata, no vectors yet
type SourceCareer struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Tasks        []string `json:"tasks"`
	Skills       []string `json:"skills"`
	MedianSalary int      `json:"median_salary,omitempty"`
	AIResilience string   `json:"ai_resilience,omitempty"`
	JobZone      int      `json:"job_zone,omitempty"`
}

// BuildOptions controls the offline embedding run
type BuildOptions struct {
	Model       string // recorded in the artifact header
	Dimensions  int
	BatchSize   int // texts per embedding call
	Concurrency int // embedding calls in flight
	OnProgress  func(done, total int)
}

// Builder defaults sized for ~1k careers: 4k texts in ~63 calls.
const (
	DefaultBatchSize   = 64
	DefaultConcurrency = 4
)

const vectorsPerCareer = 4

// LoadSources reads and schema-validates a career source file
func LoadSources(path string) ([]SourceCareer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read source file", Cause: err}
	}

	if err := schemas.Validate(schemas.CareerSource, string(content)); err != nil {
		return nil, &LoadError{Path: path, Message: "source file failed schema validation", Cause: err}
	}

	var sources []SourceCareer
	if err := json.Unmarshal(content, &sources); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal source JSON", Cause: err}
	}

	return sources, nil
}

// BuildArtifact embeds every source career and assembles a corpus artifact.
// Builds are all-or-nothing: any embedding failure fails the whole run, an
// artifact with holes in it must never reach disk.
func BuildArtifact(ctx context.Context, embedder embedding.Embedder, sources []SourceCareer, opts BuildOptions) (*Artifact, error) {
	if len(sources) == 0 {
		return nil, &ArtifactError{Message: "no source careers to build from"}
	}
	if opts.Model == "" {
		opts.Model = embedding.DefaultModel
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = embedding.DefaultDimensions
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	// Flatten to one text list: four representations per career, in a fixed
	// order so flat index i maps back to career i/4, field i%4
	texts := make([]string, 0, len(sources)*vectorsPerCareer)
	for i := range sources {
		t := embeddingTexts(&sources[i])
		texts = append(texts, t[:]...)
	}

	vectors := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	var progressMu sync.Mutex
	done := 0

	for start := 0; start < len(texts); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(texts))
		g.Go(func() error {
			batch, err := embedder.EmbedTexts(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding batch [%d:%d]: got %d vectors", start, end, len(batch))
			}
			copy(vectors[start:end], batch)

			if opts.OnProgress != nil {
				progressMu.Lock()
				done += end - start
				opts.OnProgress(done, len(texts))
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	artifact := &Artifact{
		Version:     now.Format(time.RFC3339) + "-" + opts.Model,
		Model:       opts.Model,
		Dimensions:  opts.Dimensions,
		GeneratedAt: now,
		Careers:     make([]CareerRecord, 0, len(sources)),
	}

	fields := [vectorsPerCareer]string{"task", "narrative", "skills", "combined"}
	for i := range sources {
		src := &sources[i]
		var embs [vectorsPerCareer][]float64
		for f := 0; f < vectorsPerCareer; f++ {
			vec := vectors[i*vectorsPerCareer+f]
			if len(vec) != opts.Dimensions {
				return nil, &DimensionError{Slug: src.Slug, Field: fields[f], Got: len(vec), Want: opts.Dimensions}
			}
			embs[f] = vec
		}

		artifact.Careers = append(artifact.Careers, CareerRecord{
			Slug:         src.Slug,
			Title:        src.Title,
			Category:     src.Category,
			Description:  src.Description,
			Tasks:        src.Tasks,
			Skills:       src.Skills,
			MedianSalary: src.MedianSalary,
			AIResilience: src.AIResilience,
			JobZone:      src.JobZone,
			Embeddings: CareerEmbeddings{
				Task:      embs[0],
				Narrative: embs[1],
				Skills:    embs[2],
				Combined:  embs[3],
			},
		})
	}

	return artifact, nil
}

// Save writes the artifact to disk as one JSON document
func (a *Artifact) Save(path string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact to %s: %w", path, err)
	}
	return nil
}

// embeddingTexts renders the four corpus-side representations of a career.
// These mirror the query-side intent templates: what the work is, what the
// working life is like, what skills it runs on, and everything at once.
func embeddingTexts(src *SourceCareer) [vectorsPerCareer]string {
	task := fmt.Sprintf("Day-to-day work of a %s: %s", src.Title, joinSentences(src.Tasks))
	narrative := fmt.Sprintf("%s. %s", src.Title, src.Description)
	skills := fmt.Sprintf("Skills a %s relies on: %s", src.Title, strings.Join(src.Skills, ", "))
	combined := fmt.Sprintf("%s (%s). %s Tasks: %s Skills: %s",
		src.Title, src.Category, src.Description, joinSentences(src.Tasks), strings.Join(src.Skills, ", "))

	return [vectorsPerCareer]string{task, narrative, skills, combined}
}

func joinSentences(items []string) string {
	if len(items) == 0 {
		return ""
	}
	joined := strings.Join(items, ". ")
	if !strings.HasSuffix(joined, ".") {
		joined += "."
	}
	return joined
}
