package store

import "time"

// llmRequestEvent is the row behind LLMEvent.
type llmRequestEvent struct {
	ID           int       `gorm:"primaryKey;autoIncrement"`
	Sequence     int64     `gorm:"not null;index:idx_llm_request_events_sequence"`
	Timestamp    time.Time `gorm:"not null"`
	Provider     string    `gorm:"not null"`
	Model        string    `gorm:"not null"`
	Purpose      string    `gorm:"not null"`
	InputTokens  int       `gorm:"not null"`
	OutputTokens int       `gorm:"not null"`
	LatencyMs    int64     `gorm:"not null"`
	Success      bool      `gorm:"not null"`
	ErrorMessage string    `gorm:"not null"`
	RequestBody  string    `gorm:"type:text;not null"`
	ResponseBody string    `gorm:"type:text;not null"`
}

func (llmRequestEvent) TableName() string { return "llm_request_events" }

func (e llmRequestEvent) toEvent() LLMEvent {
	return LLMEvent{
		ID:        e.ID,
		Sequence:  e.Sequence,
		Timestamp: e.Timestamp,
		LLMRequestEventData: LLMRequestEventData{
			Provider:     e.Provider,
			Model:        e.Model,
			Purpose:      e.Purpose,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			ErrorMessage: e.ErrorMessage,
			RequestBody:  e.RequestBody,
			ResponseBody: e.ResponseBody,
		},
	}
}

// runRow is the row behind RunRecord. FinishedAt stays NULL until the
// run finishes.
type runRow struct {
	ID           string     `gorm:"primaryKey"`
	Sequence     int64      `gorm:"not null;index:idx_runs_sequence"`
	StartedAt    time.Time  `gorm:"not null"`
	FinishedAt   *time.Time `gorm:"type:datetime"`
	Prompt       string     `gorm:"type:text;not null"`
	Model        string     `gorm:"not null"`
	BatchSize    int        `gorm:"not null"`
	OutputDir    string     `gorm:"not null"`
	Completed    int        `gorm:"not null"`
	Failed       int        `gorm:"not null"`
	Cancelled    bool       `gorm:"not null"`
	ErrorMessage string     `gorm:"not null"`
}

func (runRow) TableName() string { return "runs" }

func (r runRow) toRecord() RunRecord {
	rec := RunRecord{
		ID:        r.ID,
		Sequence:  r.Sequence,
		StartedAt: r.StartedAt,
		Prompt:    r.Prompt,
		Model:     r.Model,
		BatchSize: r.BatchSize,
		OutputDir: r.OutputDir,
		RunResult: RunResult{
			Completed:    r.Completed,
			Failed:       r.Failed,
			Cancelled:    r.Cancelled,
			ErrorMessage: r.ErrorMessage,
		},
	}
	if r.FinishedAt != nil {
		rec.FinishedAt = *r.FinishedAt
	}
	return rec
}
