package pipeline

import "fmt"

// Stage identifies which pipeline stage an error came from
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageEmbedding  Stage = "embedding"
	StageSearch     Stage = "search"
	StageRanking    Stage = "ranking"
)

// StageError tags a failure with the stage that produced it, so callers can
// tell "try again later" apart from "your input needs fixing" apart from
// "the service is misconfigured"
type StageError struct {
	Stage Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
