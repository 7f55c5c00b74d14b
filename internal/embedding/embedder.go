// Package embedding produces the dense vectors used for corpus search: query
// vectors at match time and corpus vectors at build time, always from the same
// model family so the two sides stay comparable.
package embedding

import "context"

// Embedder produces one embedding per input text, preserving input order.
// Implementations must make a single upstream call per EmbedTexts invocation.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
}
