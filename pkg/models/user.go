package models

import "time"

// User holds the per-user study preferences the scheduler and reminder job
// read. Authentication and profile management are external concerns.
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	MaxNewCards         int       `json:"max_new_cards" db:"max_new_cards"`       // New cards allowed per session.
	CardsPerSession     int       `json:"cards_per_session" db:"cards_per_session"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // Hour of day (0-23).
	TelegramChatID      int64     `json:"telegram_chat_id" db:"telegram_chat_id"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
