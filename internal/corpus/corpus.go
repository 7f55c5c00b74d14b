// Package corpus loads and serves the versioned career corpus artifact.
//
// The artifact is produced offline by the corpus builder and loaded exactly
// once per process. After a successful load the corpus never changes, so
// readers share it without locking.
package corpus

import (
	"encoding/json"
	"os"
	"time"
)

// CareerEmbeddings holds the four embedding representations of one career.
// All vectors in an artifact share the dimensionality declared in its header.
type CareerEmbeddings struct {
	Task      []float64 `json:"task"`
	Narrative []float64 `json:"narrative"`
	Skills    []float64 `json:"skills"`
	Combined  []float64 `json:"combined"`
}

// CareerRecord is one career in the corpus: the source text the embeddings
// were built from, display metadata, and the embeddings themselves.
// Display metadata is for response shaping only and never affects scoring.
type CareerRecord struct {
	Slug         string           `json:"slug"`
	Title        string           `json:"title"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Tasks        []string         `json:"tasks"`
	Skills       []string         `json:"skills"`
	MedianSalary int              `json:"median_salary,omitempty"`
	AIResilience string           `json:"ai_resilience,omitempty"`
	JobZone      int              `json:"job_zone,omitempty"`
	Embeddings   CareerEmbeddings `json:"embeddings"`
}

// Artifact is the on-disk corpus format
type Artifact struct {
	Version     string         `json:"version"`
	Model       string         `json:"model"`
	Dimensions  int            `json:"dimensions"`
	GeneratedAt time.Time      `json:"generated_at"`
	Careers     []CareerRecord `json:"careers"`
}

// Corpus is a validated, in-memory artifact with slug lookup
type Corpus struct {
	artifact *Artifact
	bySlug   map[string]*CareerRecord
}

// Load reads and validates a corpus artifact from disk.
// Every failure here is fatal for the process: a service must not start
// serving matches against a missing or inconsistent corpus.
func Load(path string) (*Corpus, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to read artifact",
			Cause:   err,
		}
	}

	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to unmarshal artifact JSON",
			Cause:   err,
		}
	}

	return New(&artifact)
}

// New validates an artifact and wraps it in a Corpus
func New(artifact *Artifact) (*Corpus, error) {
	if artifact.Dimensions <= 0 {
		return nil, &ArtifactError{Message: "artifact declares no embedding dimensionality"}
	}
	if len(artifact.Careers) == 0 {
		return nil, &ArtifactError{Message: "artifact contains no careers"}
	}

	bySlug := make(map[string]*CareerRecord, len(artifact.Careers))
	for i := range artifact.Careers {
		record := &artifact.Careers[i]
		if record.Slug == "" {
			return nil, &ArtifactError{Message: "record without slug"}
		}
		if _, exists := bySlug[record.Slug]; exists {
			return nil, &ArtifactError{Slug: record.Slug, Message: "duplicate slug"}
		}
		if err := checkDimensions(record, artifact.Dimensions); err != nil {
			return nil, err
		}
		bySlug[record.Slug] = record
	}

	return &Corpus{artifact: artifact, bySlug: bySlug}, nil
}

func checkDimensions(record *CareerRecord, want int) error {
	vectors := []struct {
		field string
		vec   []float64
	}{
		{"task", record.Embeddings.Task},
		{"narrative", record.Embeddings.Narrative},
		{"skills", record.Embeddings.Skills},
		{"combined", record.Embeddings.Combined},
	}

	for _, v := range vectors {
		if len(v.vec) != want {
			return &DimensionError{Slug: record.Slug, Field: v.field, Got: len(v.vec), Want: want}
		}
	}
	return nil
}

// Records returns the careers in insertion order. Callers must treat the
// returned slice as read-only.
func (c *Corpus) Records() []CareerRecord {
	return c.artifact.Careers
}

// Get looks up a career by slug
func (c *Corpus) Get(slug string) (*CareerRecord, bool) {
	record, ok := c.bySlug[slug]
	return record, ok
}

// Len returns the number of careers in the corpus
func (c *Corpus) Len() int {
	return len(c.artifact.Careers)
}

// Version returns the artifact version stamp
func (c *Corpus) Version() string {
	return c.artifact.Version
}

// Model returns the embedding model that produced the artifact
func (c *Corpus) Model() string {
	return c.artifact.Model
}

// Dimensions returns the embedding dimensionality shared by every vector
func (c *Corpus) Dimensions() int {
	return c.artifact.Dimensions
}

// GeneratedAt returns when the artifact was built
func (c *Corpus) GeneratedAt() time.Time {
	return c.artifact.GeneratedAt
}
