package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/revise/pkg/models"
)

// ErrUserNotFound is returned by point reads for unknown user ids.
var ErrUserNotFound = errors.New("user not found")

// UserRepository exposes the study preferences the session controller and
// the reminder job read. User management itself is an external concern.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	// UsersForReminder returns users who have reminders enabled for the
	// given hour of day.
	UsersForReminder(ctx context.Context, hour int) ([]models.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository returns a sqlx-backed UserRepository.
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `
		SELECT id, name, max_new_cards, cards_per_session,
		       notification_enabled, notification_hour, telegram_chat_id,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) UsersForReminder(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, name, max_new_cards, cards_per_session,
		       notification_enabled, notification_hour, telegram_chat_id,
		       created_at, updated_at
		FROM users
		WHERE notification_enabled = $1 AND notification_hour = $2
	`, true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for reminder: %w", err)
	}
	return users, nil
}
