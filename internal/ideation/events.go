package ideation

import "github.com/abhisek/ideate/internal/metrics"

// Event is one entry in a run's progress stream. The concrete types below
// are the only implementations.
type Event interface {
	isEvent()
}

// LogEvent is an informational console line.
type LogEvent struct {
	Message string
}

// ErrorEvent reports a failed iteration or, when followed directly by
// FinishedEvent, the reason a run aborted.
type ErrorEvent struct {
	Message string
	Err     error
}

// ItemCompletedEvent is sent once an idea has been written to disk.
type ItemCompletedEvent struct {
	Filename string
	Path     string
	Title    string
	Content  string
}

// ProgressEvent is sent at the end of every iteration, failed or not.
type ProgressEvent struct {
	Percent int // 0..100
	Done    int // iterations finished so far
	Total   int
}

// FinishedEvent is always the last event of a run.
type FinishedEvent struct {
	Summary Summary
}

func (LogEvent) isEvent()           {}
func (ErrorEvent) isEvent()         {}
func (ItemCompletedEvent) isEvent() {}
func (ProgressEvent) isEvent()      {}
func (FinishedEvent) isEvent()      {}

// Summary describes how a run ended.
type Summary struct {
	RunID     string
	Total     int
	Completed int
	Failed    int
	Cancelled bool
	// Err is set when the run aborted.
	Err error
}

// Outcome classifies the summary with the metrics outcome labels.
func (s Summary) Outcome() string {
	switch {
	case s.Err != nil:
		return metrics.OutcomeAborted
	case s.Cancelled:
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeCompleted
	}
}
