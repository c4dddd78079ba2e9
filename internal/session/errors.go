package session

import "errors"

// Sentinel errors for the session package. Check with errors.Is.
var (
	// ErrInvalidRating means the rating was outside 1..4. It is rejected
	// before the scheduling function ever sees it.
	ErrInvalidRating = errors.New("session: invalid rating")

	// ErrEmptyQueue means no due or new cards were available at session
	// start. A valid terminal state for the caller, not a failure.
	ErrEmptyQueue = errors.New("session: no cards due for review")

	// ErrSessionNotFound means the session id is unknown.
	ErrSessionNotFound = errors.New("session: not found")

	// ErrSessionCompleted means the session has already finished.
	ErrSessionCompleted = errors.New("session: already completed")

	// ErrInvalidSequence means a rating was submitted for a card other than
	// the one at the current queue position. The session is left unchanged.
	ErrInvalidSequence = errors.New("session: card is not at the current queue position")

	// ErrConcurrentModification means the card was modified by another
	// writer and the single automatic retry also hit a version conflict.
	ErrConcurrentModification = errors.New("session: card modified concurrently")
)
