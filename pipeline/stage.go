package pipeline

import "fmt"

// Stage identifies which step of a pipeline run failed.
type Stage string

const (
	StageLoad     Stage = "load"     // session or prompt lookup
	StageMeta     Stage = "meta"     // stage-1 gateway call
	StageEnhanced Stage = "enhanced" // stage-2 gateway call
	StageCommit   Stage = "commit"   // turn persistence
)

// StageError tags a pipeline failure with the stage that produced it. The
// underlying error kind is preserved through Unwrap.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error { return e.Err }
