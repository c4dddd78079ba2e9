package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/revise/pkg/models"
)

// ErrCardNotFound is returned by point reads for unknown card ids.
var ErrCardNotFound = errors.New("card not found")

// CardRepository is the scheduler's only collaborator boundary for card
// memory state. All mutation goes through SaveCardState, whose
// compare-and-swap on version is the sole synchronization primitive.
type CardRepository interface {
	// LoadDueCards returns cards with next_review_at <= now ordered
	// due-soonest-first, followed by up to maxNewCards not-yet-introduced
	// New cards. At most limit cards are returned in total.
	LoadDueCards(ctx context.Context, userID int64, now time.Time, limit, maxNewCards int) ([]models.CardMemoryState, error)

	// GetCardState reads a single card's memory state.
	GetCardState(ctx context.Context, cardID string) (models.CardMemoryState, error)

	// SaveCardState atomically persists next if the stored version equals
	// expectedVersion, bumping the version by one. ok=false with a nil
	// error signals a version conflict; the caller must reload and decide.
	SaveCardState(ctx context.Context, cardID string, expectedVersion int64, next models.CardMemoryState) (bool, error)

	// CreateCard inserts card content together with its initial memory state.
	CreateCard(ctx context.Context, card models.Card, state models.CardMemoryState) error

	// CountDue returns how many cards are due for the user at the given time.
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

const memoryStateColumns = `id, state, interval_days, ease_factor, repetitions, times_reviewed, next_review_at, last_reviewed_at, version`

type cardRepository struct {
	db *sqlx.DB
}

// NewCardRepository returns a sqlx-backed CardRepository.
func NewCardRepository(db *sqlx.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) LoadDueCards(ctx context.Context, userID int64, now time.Time, limit, maxNewCards int) ([]models.CardMemoryState, error) {
	if limit <= 0 {
		return nil, nil
	}

	var due []models.CardMemoryState
	err := r.db.SelectContext(ctx, &due, `
		SELECT `+memoryStateColumns+`
		FROM cards
		WHERE user_id = $1 AND state != $2 AND next_review_at <= $3
		ORDER BY next_review_at ASC
		LIMIT $4
	`, userID, models.StateNew, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load due cards: %w", err)
	}

	// New cards go last so the review backlog is cleared first.
	newLimit := maxNewCards
	if room := limit - len(due); newLimit > room {
		newLimit = room
	}
	if newLimit <= 0 {
		return due, nil
	}

	var fresh []models.CardMemoryState
	err = r.db.SelectContext(ctx, &fresh, `
		SELECT `+memoryStateColumns+`
		FROM cards
		WHERE user_id = $1 AND state = $2
		ORDER BY created_at ASC
		LIMIT $3
	`, userID, models.StateNew, newLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load new cards: %w", err)
	}

	return append(due, fresh...), nil
}

func (r *cardRepository) GetCardState(ctx context.Context, cardID string) (models.CardMemoryState, error) {
	var state models.CardMemoryState
	err := r.db.GetContext(ctx, &state, `
		SELECT `+memoryStateColumns+`
		FROM cards
		WHERE id = $1
	`, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CardMemoryState{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if err != nil {
		return models.CardMemoryState{}, fmt.Errorf("failed to get card state: %w", err)
	}
	return state, nil
}

func (r *cardRepository) SaveCardState(ctx context.Context, cardID string, expectedVersion int64, next models.CardMemoryState) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET
			state = $1,
			interval_days = $2,
			ease_factor = $3,
			repetitions = $4,
			times_reviewed = $5,
			next_review_at = $6,
			last_reviewed_at = $7,
			version = $8,
			updated_at = $9
		WHERE id = $10 AND version = $11
	`,
		next.State,
		next.IntervalDays,
		next.EaseFactor,
		next.Repetitions,
		next.TimesReviewed,
		next.NextReviewAt,
		next.LastReviewedAt,
		expectedVersion+1,
		time.Now().UTC(),
		cardID,
		expectedVersion,
	)
	if err != nil {
		return false, fmt.Errorf("failed to save card state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *cardRepository) CreateCard(ctx context.Context, card models.Card, state models.CardMemoryState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (
			id, user_id, deck, front, back,
			state, interval_days, ease_factor, repetitions, times_reviewed,
			next_review_at, last_reviewed_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		card.ID,
		card.UserID,
		card.Deck,
		card.Front,
		card.Back,
		state.State,
		state.IntervalDays,
		state.EaseFactor,
		state.Repetitions,
		state.TimesReviewed,
		state.NextReviewAt,
		state.LastReviewedAt,
		state.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create card %s: %w", card.ID, err)
	}
	return nil
}

func (r *cardRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM cards
		WHERE user_id = $1 AND state != $2 AND next_review_at <= $3
	`, userID, models.StateNew, now)
	if err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return count, nil
}
