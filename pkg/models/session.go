package models

import (
	"fmt"
	"time"
)

// SessionStatus tracks a review session through its lifecycle.
type SessionStatus int

const (
	SessionCreated    SessionStatus = iota // Queue captured, no card rated yet.
	SessionInProgress                      // At least one card rated.
	SessionCompleted                       // Queue exhausted or ended early.
)

var sessionStatusNames = [...]string{
	SessionCreated:    "created",
	SessionInProgress: "in_progress",
	SessionCompleted:  "completed",
}

// String returns the lowercase name of the status.
func (s SessionStatus) String() string {
	if s >= SessionCreated && s <= SessionCompleted {
		return sessionStatusNames[s]
	}
	return fmt.Sprintf("session_status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler so statuses serialize by name.
func (s SessionStatus) MarshalText() ([]byte, error) {
	if s < SessionCreated || s > SessionCompleted {
		return nil, fmt.Errorf("invalid session status: %d", int(s))
	}
	return []byte(sessionStatusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SessionStatus) UnmarshalText(text []byte) error {
	for i, name := range sessionStatusNames {
		if name == string(text) {
			*s = SessionStatus(i)
			return nil
		}
	}
	return fmt.Errorf("invalid session status: %q", text)
}

// ReviewSession is one bounded pass through a queue of due and new cards.
// The queue is fixed when the session starts; cards becoming due mid-session
// are picked up by the next session, not injected into this one.
type ReviewSession struct {
	ID             string        `json:"id"`
	UserID         int64         `json:"user_id"`
	Queue          []string      `json:"queue"`
	CurrentIndex   int           `json:"current_index"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	CardsCompleted int           `json:"cards_completed"`
	TotalElapsedMs int64         `json:"total_elapsed_ms"`
}

// CurrentCardID returns the card at the head of the queue, or "" if the
// queue is exhausted.
func (s ReviewSession) CurrentCardID() string {
	if s.CurrentIndex >= len(s.Queue) {
		return ""
	}
	return s.Queue[s.CurrentIndex]
}

// Remaining returns how many cards are left to rate, including the current one.
func (s ReviewSession) Remaining() int {
	return len(s.Queue) - s.CurrentIndex
}

// SessionSummary is the final accounting for a session.
type SessionSummary struct {
	SessionID        string `json:"session_id"`
	CardsCompleted   int    `json:"cards_completed"`
	TotalElapsedMs   int64  `json:"total_elapsed_ms"`
	AverageElapsedMs int64  `json:"average_elapsed_ms"`
}
