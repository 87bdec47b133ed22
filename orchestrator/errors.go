package orchestrator

import "fmt"

// Stage names the pipeline phases in execution order.
type Stage string

const (
	StageLoading      Stage = "loading"
	StageWindowing    Stage = "windowing"
	StageScoring      Stage = "scoring"
	StageAssembling   Stage = "assembling"
	StageTranscribing Stage = "transcribing"
)

// PipelineError is a fatal stage failure. Loading, windowing, scoring and
// assembling errors are fatal because each stage feeds the next
// irrecoverably; transcription errors never become a PipelineError.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func failAt(stage Stage, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
