package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
)

// CardHandler serves card memory state reads.
type CardHandler struct {
	log   *logger.Logger
	cards database.CardRepository
}

func NewCardHandler(log *logger.Logger, cards database.CardRepository) *CardHandler {
	return &CardHandler{
		log:   log.With("handler", "CardHandler"),
		cards: cards,
	}
}

// GetCardState handles GET /api/cards/:id.
func (h *CardHandler) GetCardState(c *gin.Context) {
	state, err := h.cards.GetCardState(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, errorBody(err))
			return
		}
		h.log.Error("failed to get card state", "card_id", c.Param("id"), "error", err)
		c.JSON(http.StatusServiceUnavailable, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, state)
}
