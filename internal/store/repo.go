package store

import (
	"context"
	"time"
)

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit int // max results (0 = unlimited)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// RunRecord describes one batch run.
type RunRecord struct {
	ID         string
	Sequence   int64
	StartedAt  time.Time
	FinishedAt time.Time // zero while running or if the process died
	Prompt     string
	Model      string
	BatchSize  int
	OutputDir  string
	RunResult
}

// RunResult is the outcome recorded when a run finishes.
type RunResult struct {
	Completed    int
	Failed       int
	Cancelled    bool
	ErrorMessage string
}

// RunRepo persists run history.
type RunRepo interface {
	// StartRun inserts a run record. rec.ID must be unique.
	StartRun(ctx context.Context, rec RunRecord) error

	// FinishRun stamps the finish time and result on an existing run.
	FinishRun(ctx context.Context, id string, result RunResult) error

	// ListRuns returns runs newest first.
	ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error)
}
