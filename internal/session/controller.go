package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
	"github.com/example/revise/internal/scheduling"
	"github.com/example/revise/pkg/models"
)

// DefaultQueueLimit bounds a session's queue when the caller does not
// specify a per-session card cap.
const DefaultQueueLimit = 100

// Controller sequences review sessions: it captures the due-card queue,
// applies the scheduling function per submitted rating, persists the result
// through the repository's compare-and-swap, and tracks timing.
//
// Sessions live in memory; the card repository is the only shared resource
// between sessions. Submissions for a single session are serialized by a
// per-session lock, so the strict queue-order check is race-free.
type Controller struct {
	log    *logger.Logger
	cards  database.CardRepository
	events database.ReviewEventRepository
	sm2    *scheduling.SM2

	mu       sync.RWMutex
	sessions map[string]*activeSession
}

type activeSession struct {
	mu          sync.Mutex
	session     models.ReviewSession
	states      map[string]models.CardMemoryState // last-known state per card
	presentedAt time.Time                         // when the current card was revealed
}

// NewController wires a session controller. events may be nil when no audit
// trail is wanted; event persistence failures never block a session.
func NewController(log *logger.Logger, cards database.CardRepository, events database.ReviewEventRepository, sm2 *scheduling.SM2) *Controller {
	return &Controller{
		log:      log.With("component", "session_controller"),
		cards:    cards,
		events:   events,
		sm2:      sm2,
		sessions: make(map[string]*activeSession),
	}
}

// SubmitResult is what the caller gets back after a successful rating.
type SubmitResult struct {
	State      models.CardMemoryState `json:"state"`
	NextCardID string                 `json:"next_card_id,omitempty"`
	Completed  bool                   `json:"completed"`
	Remaining  int                    `json:"remaining"`
}

// StartSession captures the due-card queue for the user and returns the new
// session. The queue is fixed from this point on. Returns ErrEmptyQueue when
// nothing is due and no new cards are available.
func (c *Controller) StartSession(ctx context.Context, userID int64, now time.Time, limit, maxNewCards int) (models.ReviewSession, error) {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}

	cards, err := c.cards.LoadDueCards(ctx, userID, now, limit, maxNewCards)
	if err != nil {
		return models.ReviewSession{}, fmt.Errorf("loading due cards: %w", err)
	}
	if len(cards) == 0 {
		return models.ReviewSession{}, ErrEmptyQueue
	}

	queue := make([]string, len(cards))
	states := make(map[string]models.CardMemoryState, len(cards))
	for i, card := range cards {
		queue[i] = card.CardID
		states[card.CardID] = card
	}

	s := &activeSession{
		session: models.ReviewSession{
			ID:        uuid.NewString(),
			UserID:    userID,
			Queue:     queue,
			Status:    models.SessionCreated,
			StartedAt: now,
		},
		states:      states,
		presentedAt: now,
	}

	c.mu.Lock()
	c.sessions[s.session.ID] = s
	c.mu.Unlock()

	c.log.Info("session started",
		"session_id", s.session.ID,
		"user_id", userID,
		"queue_len", len(queue),
	)
	return s.session, nil
}

// SubmitRating grades the card at the head of the session queue. Ratings
// must arrive in queue order; anything else returns ErrInvalidSequence with
// the session untouched. The new state is persisted with a compare-and-swap
// on the card's last-known version; on conflict the card is reloaded,
// rescheduled against the fresh state, and the save retried exactly once
// before ErrConcurrentModification is surfaced. The queue position advances
// only after a confirmed save, so a failed save can always be resubmitted.
func (c *Controller) SubmitRating(ctx context.Context, sessionID, cardID string, rating models.Rating, now time.Time) (SubmitResult, error) {
	if !rating.IsValid() {
		return SubmitResult{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	s, err := c.lookup(sessionID)
	if err != nil {
		return SubmitResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Status == models.SessionCompleted {
		return SubmitResult{}, ErrSessionCompleted
	}
	head := s.session.CurrentCardID()
	if cardID != head {
		return SubmitResult{}, fmt.Errorf("%w: got %q, current is %q", ErrInvalidSequence, cardID, head)
	}

	known := s.states[cardID]
	saved, err := c.scheduleAndSave(ctx, known, rating, now)
	if err != nil {
		return SubmitResult{}, err
	}

	elapsedMs := now.Sub(s.presentedAt).Milliseconds()
	c.recordEvent(ctx, models.ReviewEvent{
		CardID:        cardID,
		SessionID:     sessionID,
		Rating:        rating,
		ElapsedMs:     elapsedMs,
		PreviousState: known.State,
		NewState:      saved.State,
		ReviewedAt:    now,
	})

	s.states[cardID] = saved
	s.session.CurrentIndex++
	s.session.CardsCompleted++
	s.session.TotalElapsedMs += elapsedMs
	s.presentedAt = now

	result := SubmitResult{
		State:     saved,
		Remaining: s.session.Remaining(),
	}
	if next := s.session.CurrentCardID(); next != "" {
		s.session.Status = models.SessionInProgress
		result.NextCardID = next
	} else {
		s.session.Status = models.SessionCompleted
		result.Completed = true
		c.log.Info("session completed",
			"session_id", sessionID,
			"cards_completed", s.session.CardsCompleted,
		)
	}
	return result, nil
}

// scheduleAndSave runs the scheduling function and persists the outcome,
// retrying once against a refreshed state on version conflict.
func (c *Controller) scheduleAndSave(ctx context.Context, known models.CardMemoryState, rating models.Rating, now time.Time) (models.CardMemoryState, error) {
	next := c.sm2.Schedule(known, rating, now)
	ok, err := c.cards.SaveCardState(ctx, known.CardID, known.Version, next)
	if err != nil {
		return models.CardMemoryState{}, fmt.Errorf("saving card state: %w", err)
	}
	if ok {
		next.Version = known.Version + 1
		return next, nil
	}

	// Another session or device updated the card first. Reschedule against
	// the fresh state and try once more.
	c.log.Warn("version conflict, retrying against fresh state", "card_id", known.CardID)
	fresh, err := c.cards.GetCardState(ctx, known.CardID)
	if err != nil {
		return models.CardMemoryState{}, fmt.Errorf("reloading card after conflict: %w", err)
	}
	next = c.sm2.Schedule(fresh, rating, now)
	ok, err = c.cards.SaveCardState(ctx, fresh.CardID, fresh.Version, next)
	if err != nil {
		return models.CardMemoryState{}, fmt.Errorf("saving card state after conflict: %w", err)
	}
	if !ok {
		return models.CardMemoryState{}, fmt.Errorf("%w: %s", ErrConcurrentModification, known.CardID)
	}
	next.Version = fresh.Version + 1
	return next, nil
}

// EndSession finalizes a session at its current progress. Remaining queued
// cards are dropped without penalty; they stay due for the next session.
// Callable at any point, including on an already completed session.
func (c *Controller) EndSession(sessionID string) (models.SessionSummary, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return models.SessionSummary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Status = models.SessionCompleted
	summary := models.SessionSummary{
		SessionID:      sessionID,
		CardsCompleted: s.session.CardsCompleted,
		TotalElapsedMs: s.session.TotalElapsedMs,
	}
	if summary.CardsCompleted > 0 {
		summary.AverageElapsedMs = summary.TotalElapsedMs / int64(summary.CardsCompleted)
	}
	return summary, nil
}

// GetSession returns a snapshot of the session's progress.
func (c *Controller) GetSession(sessionID string) (models.ReviewSession, error) {
	s, err := c.lookup(sessionID)
	if err != nil {
		return models.ReviewSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.session
	snapshot.Queue = append([]string(nil), s.session.Queue...)
	return snapshot, nil
}

func (c *Controller) lookup(sessionID string) (*activeSession, error) {
	c.mu.RLock()
	s, ok := c.sessions[sessionID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// recordEvent writes the audit event; failures are logged and swallowed so
// metrics can never block review progress.
func (c *Controller) recordEvent(ctx context.Context, event models.ReviewEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Record(ctx, event); err != nil {
		c.log.Error("failed to record review event",
			"card_id", event.CardID,
			"session_id", event.SessionID,
			"error", err,
		)
	}
}
