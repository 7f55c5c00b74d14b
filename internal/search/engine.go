// Package search ranks corpus careers against a query by weighted cosine
// similarity. It is a brute-force scan over every record: at roughly a
// thousand careers this is faster to run than an ANN index is to maintain,
// and it keeps the ordering contract exact.
package search

import (
	"math"
	"sort"

	"github.com/jonathan/career-matcher/internal/corpus"
	"github.com/jonathan/career-matcher/internal/embedding"
	"github.com/jonathan/career-matcher/internal/types"
)

// Weights blends the three per-field cosine similarities into one score
type Weights struct {
	Task      float64
	Narrative float64
	Skills    float64
}

// DefaultWeights favors what the user wants to do over how they describe
// themselves
var DefaultWeights = Weights{Task: 0.5, Narrative: 0.3, Skills: 0.2}

// DefaultTopK is the candidate list size handed to the ranker
const DefaultTopK = 50

type indexedRecord struct {
	slug string

	task      []float64
	narrative []float64
	skills    []float64

	taskNorm      float64
	narrativeNorm float64
	skillsNorm    float64

	// excluded marks records with a zero-norm vector, which have no defined
	// cosine similarity. A well-formed corpus has none.
	excluded bool
}

// Engine scores queries against a fixed corpus. Record norms are computed
// once at construction, so Search does one dot product per field per record.
// An Engine is safe for concurrent use.
type Engine struct {
	records []indexedRecord
	weights Weights
}

// NewEngine indexes the corpus for searching. A zero-value weights argument
// selects DefaultWeights.
func NewEngine(c *corpus.Corpus, weights Weights) *Engine {
	if weights == (Weights{}) {
		weights = DefaultWeights
	}

	source := c.Records()
	records := make([]indexedRecord, len(source))
	for i := range source {
		rec := &source[i]
		idx := indexedRecord{
			slug:          rec.Slug,
			task:          rec.Embeddings.Task,
			narrative:     rec.Embeddings.Narrative,
			skills:        rec.Embeddings.Skills,
			taskNorm:      norm(rec.Embeddings.Task),
			narrativeNorm: norm(rec.Embeddings.Narrative),
			skillsNorm:    norm(rec.Embeddings.Skills),
		}
		idx.excluded = idx.taskNorm == 0 || idx.narrativeNorm == 0 || idx.skillsNorm == 0
		records[i] = idx
	}

	return &Engine{records: records, weights: weights}
}

// Search returns the topK most similar careers, similarity descending.
// Exactly equal scores keep corpus insertion order, so repeated calls with
// the same query return the same ordering. topK values <= 0 select
// DefaultTopK. A zero-norm query vector contributes nothing to the blend
// rather than failing the search.
func (e *Engine) Search(q embedding.QueryVectors, topK int) []types.Candidate {
	if topK <= 0 {
		topK = DefaultTopK
	}

	taskNorm := norm(q.Task)
	narrativeNorm := norm(q.Narrative)
	skillsNorm := norm(q.Skills)

	candidates := make([]types.Candidate, 0, len(e.records))
	for i := range e.records {
		rec := &e.records[i]
		if rec.excluded {
			continue
		}

		score := e.weights.Task*cosine(q.Task, taskNorm, rec.task, rec.taskNorm) +
			e.weights.Narrative*cosine(q.Narrative, narrativeNorm, rec.narrative, rec.narrativeNorm) +
			e.weights.Skills*cosine(q.Skills, skillsNorm, rec.skills, rec.skillsNorm)

		candidates = append(candidates, types.Candidate{Slug: rec.slug, Similarity: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates
}

// cosine computes dot(a, b) / (aNorm * bNorm) with both norms precomputed.
// Zero norms and mismatched lengths score zero instead of dividing by zero.
func cosine(a []float64, aNorm float64, b []float64, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 || len(a) != len(b) {
		return 0
	}

	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (aNorm * bNorm)
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
