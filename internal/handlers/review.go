package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
	"github.com/example/revise/internal/session"
	"github.com/example/revise/pkg/models"
)

// ReviewHandler exposes the review-session API. The clock is injected so
// tests can drive time and so reviews can be backfilled with a caller
// supplied "as of" timestamp later if needed.
type ReviewHandler struct {
	log        *logger.Logger
	controller *session.Controller
	users      database.UserRepository
	now        func() time.Time
}

// NewReviewHandler wires the handler. now may be nil, defaulting to UTC wall
// clock time.
func NewReviewHandler(log *logger.Logger, controller *session.Controller, users database.UserRepository, now func() time.Time) *ReviewHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReviewHandler{
		log:        log.With("handler", "ReviewHandler"),
		controller: controller,
		users:      users,
		now:        now,
	}
}

type startSessionRequest struct {
	UserID      int64 `json:"user_id" binding:"required"`
	MaxNewCards *int  `json:"max_new_cards"`
	Limit       *int  `json:"limit"`
}

type startSessionResponse struct {
	Session models.ReviewSession `json:"session"`
	CardID  string               `json:"card_id"`
}

// StartSession handles POST /api/review-sessions.
// An empty queue is a valid terminal state, reported with 200 and no session.
func (h *ReviewHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, errorBody(err))
			return
		}
		h.log.Error("failed to load user", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
		return
	}

	maxNewCards := user.MaxNewCards
	if req.MaxNewCards != nil {
		maxNewCards = *req.MaxNewCards
	}
	limit := user.CardsPerSession
	if req.Limit != nil {
		limit = *req.Limit
	}

	sess, err := h.controller.StartSession(c.Request.Context(), req.UserID, h.now(), limit, maxNewCards)
	if errors.Is(err, session.ErrEmptyQueue) {
		c.JSON(http.StatusOK, gin.H{"empty_queue": true})
		return
	}
	if err != nil {
		h.log.Error("failed to start session", "user_id", req.UserID, "error", err)
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
		return
	}

	c.JSON(http.StatusCreated, startSessionResponse{
		Session: sess,
		CardID:  sess.CurrentCardID(),
	})
}

type submitRatingRequest struct {
	CardID string `json:"card_id" binding:"required"`
	Rating int    `json:"rating" binding:"required"`
}

// SubmitRating handles POST /api/review-sessions/:id/ratings.
func (h *ReviewHandler) SubmitRating(c *gin.Context) {
	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}

	result, err := h.controller.SubmitRating(
		c.Request.Context(),
		c.Param("id"),
		req.CardID,
		models.Rating(req.Rating),
		h.now(),
	)
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// EndSession handles POST /api/review-sessions/:id/end.
func (h *ReviewHandler) EndSession(c *gin.Context) {
	summary, err := h.controller.EndSession(c.Param("id"))
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetSession handles GET /api/review-sessions/:id.
func (h *ReviewHandler) GetSession(c *gin.Context) {
	sess, err := h.controller.GetSession(c.Param("id"))
	if err != nil {
		h.writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// writeSessionError maps controller errors onto HTTP statuses. Anything not
// in the session taxonomy is treated as a transient repository failure the
// client may retry.
func (h *ReviewHandler) writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, errorBody(err))
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, errorBody(err))
	case errors.Is(err, session.ErrInvalidSequence),
		errors.Is(err, session.ErrSessionCompleted),
		errors.Is(err, session.ErrConcurrentModification):
		c.JSON(http.StatusConflict, errorBody(err))
	default:
		h.log.Error("review request failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
	}
}
