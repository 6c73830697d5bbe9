package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turnolab/scheduler-api/internal/model"
)

// Upsert inserts an imported block, replacing any previous import with the
// same source and external id so re-syncs stay idempotent.
func (r *calendarBlockRepository) Upsert(ctx context.Context, block *model.CalendarBlock) error {
	query := `
		INSERT INTO calendar_blocks (
			id, professional_id, start_time, end_time, source, summary,
			external_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source, external_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at
	`
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	block.CreatedAt = time.Now()
	block.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		block.ID,
		block.ProfessionalID,
		block.StartTime,
		block.EndTime,
		block.Source,
		block.Summary,
		block.ExternalID,
		block.CreatedAt,
		block.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert calendar block: %w", err)
	}
	return nil
}

func (r *calendarBlockRepository) List(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*model.CalendarBlock, error) {
	query := `
		SELECT id, professional_id, start_time, end_time, source, summary,
			   external_id, created_at, updated_at
		FROM calendar_blocks
		WHERE professional_id = $1
		AND start_time < $3
		AND end_time > $2
		ORDER BY start_time ASC
	`
	var blocks []*model.CalendarBlock
	err := r.db.SelectContext(ctx, &blocks, query, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar blocks: %w", err)
	}
	return blocks, nil
}

func (r *calendarBlockRepository) FindOverlapping(ctx context.Context, professionalID uuid.UUID, start, end time.Time) ([]*model.CalendarBlock, error) {
	query := `
		SELECT id, professional_id, start_time, end_time, source, summary,
			   external_id, created_at, updated_at
		FROM calendar_blocks
		WHERE professional_id = $1
		AND start_time < $3
		AND end_time > $2
		ORDER BY start_time ASC
	`
	var blocks []*model.CalendarBlock
	err := r.db.SelectContext(ctx, &blocks, query, professionalID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping blocks: %w", err)
	}
	return blocks, nil
}

func (r *calendarBlockRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM calendar_blocks
		WHERE end_time < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ended blocks: %w", err)
	}
	return result.RowsAffected()
}
