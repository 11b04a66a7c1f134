package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// EventStore implements EventRepo and the read queries behind the
// `llm` subcommands.
type EventStore struct {
	db  *gorm.DB
	seq *sequenceCounter
}

var _ EventRepo = (*EventStore)(nil)

func (r *EventStore) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	row := llmRequestEvent{
		Sequence:     seqNum,
		Timestamp:    time.Now().UTC(),
		Provider:     data.Provider,
		Model:        data.Model,
		Purpose:      data.Purpose,
		InputTokens:  data.InputTokens,
		OutputTokens: data.OutputTokens,
		LatencyMs:    data.LatencyMs,
		Success:      data.Success,
		ErrorMessage: data.ErrorMessage,
		RequestBody:  data.RequestBody,
		ResponseBody: data.ResponseBody,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

// QueryLLMEvents returns events newest first.
func (r *EventStore) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	q := r.db.WithContext(ctx).Order("sequence DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []llmRequestEvent
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

// GetLLMEvent returns the event with the given ID, or nil if none exists.
func (r *EventStore) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	var row llmRequestEvent
	err := r.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	e := row.toEvent()
	return &e, nil
}

// LLMUsageByPurpose aggregates calls and tokens per purpose label.
func (r *EventStore) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var out []PurposeUsage
	err := r.db.WithContext(ctx).Model(&llmRequestEvent{}).
		Select(`purpose, COUNT(*) AS calls,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens,
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) AS avg_latency_ms`).
		Group("purpose").
		Order("purpose").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

// LLMUsageByModel aggregates calls, failures and tokens per model.
func (r *EventStore) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var out []ModelUsage
	err := r.db.WithContext(ctx).Model(&llmRequestEvent{}).
		Select(`model, COUNT(*) AS calls,
			COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failures,
			COALESCE(SUM(input_tokens), 0) AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens`).
		Group("model").
		Order("model").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}
