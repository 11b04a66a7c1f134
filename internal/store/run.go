package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// runRepo implements RunRepo.
type runRepo struct {
	db  *gorm.DB
	seq *sequenceCounter
}

func (r *runRepo) StartRun(ctx context.Context, rec RunRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	startedAt := rec.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	row := runRow{
		ID:        rec.ID,
		Sequence:  seqNum,
		StartedAt: startedAt.UTC(),
		Prompt:    rec.Prompt,
		Model:     rec.Model,
		BatchSize: rec.BatchSize,
		OutputDir: rec.OutputDir,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

func (r *runRepo) FinishRun(ctx context.Context, id string, result RunResult) error {
	res := r.db.WithContext(ctx).Model(&runRow{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"finished_at":   time.Now().UTC(),
			"completed":     result.Completed,
			"failed":        result.Failed,
			"cancelled":     result.Cancelled,
			"error_message": result.ErrorMessage,
		})
	if res.Error != nil {
		return fmt.Errorf("finish run %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("finish run %s: no such run", id)
	}
	return nil
}

func (r *runRepo) ListRuns(ctx context.Context, opts QueryOpts) ([]RunRecord, error) {
	q := r.db.WithContext(ctx).Order("sequence DESC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []runRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, row.toRecord())
	}
	return runs, nil
}
