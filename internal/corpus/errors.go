// Package corpus loads and serves the versioned career corpus artifact.
package corpus

import "fmt"

// LoadError represents an error during file I/O or JSON parsing
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corpus load error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("corpus load error (%s): %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ArtifactError represents a structural problem with an otherwise parseable artifact
type ArtifactError struct {
	Slug    string // offending record, empty for artifact-level problems
	Message string
}

func (e *ArtifactError) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("corpus artifact error (record %s): %s", e.Slug, e.Message)
	}
	return fmt.Sprintf("corpus artifact error: %s", e.Message)
}

// DimensionError reports an embedding vector whose length does not match the
// artifact's declared dimensionality
type DimensionError struct {
	Slug  string
	Field string // task, narrative, skills, combined
	Got   int
	Want  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("corpus dimension error (record %s, %s vector): got %d dimensions, want %d",
		e.Slug, e.Field, e.Got, e.Want)
}
