package models

import (
	"fmt"
	"time"
)

// DefaultEaseFactor is the ease assigned to a card that has never been reviewed.
const DefaultEaseFactor = 2.5

// State represents the learning stage of a card.
type State int

const (
	StateNew        State = iota // Never reviewed.
	StateLearning                // In initial short-interval learning.
	StateReviewing               // Entered the long-term review cycle.
	StateRelearning              // Lapsed out of Reviewing, relearning.
)

var stateNames = [...]string{
	StateNew:        "new",
	StateLearning:   "learning",
	StateReviewing:  "reviewing",
	StateRelearning: "relearning",
}

// IsValid reports whether s is one of the defined states.
func (s State) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the lowercase name of the state. For invalid values it
// returns "state(n)".
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("invalid state: %q", text)
}

// Rating is the user's self-reported recall quality, ordered worst to best.
type Rating int

const (
	RatingAgain Rating = iota + 1 // Forgot the card entirely.
	RatingHard                    // Recalled with significant effort.
	RatingGood                    // Recalled with some effort.
	RatingEasy                    // Recalled effortlessly.
)

var ratingNames = [...]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// IsValid reports whether r is in the accepted 1..4 range.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating. For invalid values it
// returns "rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Card is the flashcard content itself. Scheduling state lives in
// CardMemoryState and is mutated only through the repository.
type Card struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Deck      string    `json:"deck" db:"deck"`
	Front     string    `json:"front" db:"front"`
	Back      string    `json:"back" db:"back"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CardMemoryState tracks a card's position in the spaced-repetition schedule.
type CardMemoryState struct {
	CardID         string     `json:"card_id" db:"id"`
	State          State      `json:"state" db:"state"`
	IntervalDays   float64    `json:"interval_days" db:"interval_days"`
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	TimesReviewed  int        `json:"times_reviewed" db:"times_reviewed"`
	NextReviewAt   time.Time  `json:"next_review_at" db:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	Version        int64      `json:"version" db:"version"`
}

// NewCardMemoryState returns the initial memory state for a card that has
// never been reviewed. NextReviewAt is set to now so the card is immediately
// eligible for introduction.
func NewCardMemoryState(cardID string, now time.Time) CardMemoryState {
	return CardMemoryState{
		CardID:       cardID,
		State:        StateNew,
		IntervalDays: 0,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		Version:      1,
	}
}

// IsDue reports whether the card is scheduled for review at the given time.
// The check is inclusive: a card due exactly now is due.
func (c CardMemoryState) IsDue(now time.Time) bool {
	return !now.Before(c.NextReviewAt)
}

// ReviewEvent records a single graded review for audit and analytics.
type ReviewEvent struct {
	ID            int64     `json:"id" db:"id"`
	CardID        string    `json:"card_id" db:"card_id"`
	SessionID     string    `json:"session_id" db:"session_id"`
	Rating        Rating    `json:"rating" db:"rating"`
	ElapsedMs     int64     `json:"elapsed_ms" db:"elapsed_ms"`
	PreviousState State     `json:"previous_state" db:"previous_state"`
	NewState      State     `json:"new_state" db:"new_state"`
	ReviewedAt    time.Time `json:"reviewed_at" db:"reviewed_at"`
}
