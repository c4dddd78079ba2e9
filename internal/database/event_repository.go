package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/revise/pkg/models"
)

// ReviewEventRepository appends graded-review events for audit and
// downstream analytics. Events are write-once; nothing in the scheduler
// depends on reading them back.
type ReviewEventRepository interface {
	Record(ctx context.Context, event models.ReviewEvent) error
	ListBySession(ctx context.Context, sessionID string) ([]models.ReviewEvent, error)
}

type reviewEventRepository struct {
	db *sqlx.DB
}

// NewReviewEventRepository returns a sqlx-backed ReviewEventRepository.
func NewReviewEventRepository(db *sqlx.DB) ReviewEventRepository {
	return &reviewEventRepository{db: db}
}

func (r *reviewEventRepository) Record(ctx context.Context, event models.ReviewEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_events (
			card_id, session_id, rating, elapsed_ms,
			previous_state, new_state, reviewed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		event.CardID,
		event.SessionID,
		event.Rating,
		event.ElapsedMs,
		event.PreviousState,
		event.NewState,
		event.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record review event: %w", err)
	}
	return nil
}

func (r *reviewEventRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ReviewEvent, error) {
	var events []models.ReviewEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, card_id, session_id, rating, elapsed_ms, previous_state, new_state, reviewed_at
		FROM review_events
		WHERE session_id = $1
		ORDER BY reviewed_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review events: %w", err)
	}
	return events, nil
}
