package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
	"github.com/example/revise/internal/scheduling"
	"github.com/example/revise/internal/session"
	"github.com/example/revise/pkg/models"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeCardRepo struct {
	mu     sync.Mutex
	states map[string]models.CardMemoryState
}

func (f *fakeCardRepo) LoadDueCards(_ context.Context, _ int64, now time.Time, limit, maxNewCards int) ([]models.CardMemoryState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CardMemoryState
	for _, s := range f.states {
		if s.State != models.StateNew && s.IsDue(now) && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) GetCardState(_ context.Context, cardID string) (models.CardMemoryState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.states[cardID]
	if !ok {
		return models.CardMemoryState{}, fmt.Errorf("%w: %s", database.ErrCardNotFound, cardID)
	}
	return s, nil
}

func (f *fakeCardRepo) SaveCardState(_ context.Context, cardID string, expectedVersion int64, next models.CardMemoryState) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.states[cardID]
	if !ok || current.Version != expectedVersion {
		return false, nil
	}
	next.Version = expectedVersion + 1
	f.states[cardID] = next
	return true, nil
}

func (f *fakeCardRepo) CreateCard(_ context.Context, _ models.Card, state models.CardMemoryState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.CardID] = state
	return nil
}

func (f *fakeCardRepo) CountDue(_ context.Context, _ int64, _ time.Time) (int, error) {
	return len(f.states), nil
}

type fakeUserRepo struct {
	users map[int64]models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %d", database.ErrUserNotFound, id)
	}
	return u, nil
}

func (f *fakeUserRepo) UsersForReminder(_ context.Context, _ int) ([]models.User, error) {
	return nil, errors.New("not implemented")
}

func testRouter(cards *fakeCardRepo) (*gin.Engine, *session.Controller) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	controller := session.NewController(log, cards, nil, scheduling.NewSM2())
	users := &fakeUserRepo{users: map[int64]models.User{
		1: {ID: 1, MaxNewCards: 10, CardsPerSession: 50},
	}}

	router := gin.New()
	h := NewReviewHandler(log, controller, users, func() time.Time { return t0 })
	ch := NewCardHandler(log, cards)
	router.POST("/api/review-sessions", h.StartSession)
	router.POST("/api/review-sessions/:id/ratings", h.SubmitRating)
	router.POST("/api/review-sessions/:id/end", h.EndSession)
	router.GET("/api/review-sessions/:id", h.GetSession)
	router.GET("/api/cards/:id", ch.GetCardState)
	return router, controller
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func dueCard(id string) models.CardMemoryState {
	return models.CardMemoryState{
		CardID:       id,
		State:        models.StateReviewing,
		IntervalDays: 10,
		EaseFactor:   2.5,
		Repetitions:  3,
		NextReviewAt: t0.Add(-time.Hour),
		Version:      1,
	}
}

func TestStartSessionAndSubmitFlow(t *testing.T) {
	cards := &fakeCardRepo{states: map[string]models.CardMemoryState{"c1": dueCard("c1")}}
	router, _ := testRouter(cards)

	w := doJSON(t, router, http.MethodPost, "/api/review-sessions", gin.H{"user_id": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	var started struct {
		Session models.ReviewSession `json:"session"`
		CardID  string               `json:"card_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.CardID != "c1" {
		t.Fatalf("card_id = %q, want c1", started.CardID)
	}

	w = doJSON(t, router, http.MethodPost, "/api/review-sessions/"+started.Session.ID+"/ratings",
		gin.H{"card_id": "c1", "rating": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("rating status = %d, body %s", w.Code, w.Body.String())
	}
	var result session.SubmitResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Completed {
		t.Errorf("result = %+v, want completed single-card session", result)
	}

	w = doJSON(t, router, http.MethodPost, "/api/review-sessions/"+started.Session.ID+"/end", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end status = %d", w.Code)
	}
	var summary models.SessionSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.CardsCompleted != 1 {
		t.Errorf("CardsCompleted = %d, want 1", summary.CardsCompleted)
	}
}

func TestStartSessionEmptyQueue(t *testing.T) {
	cards := &fakeCardRepo{states: map[string]models.CardMemoryState{}}
	router, _ := testRouter(cards)

	w := doJSON(t, router, http.MethodPost, "/api/review-sessions", gin.H{"user_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (empty queue is not an error)", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["empty_queue"] != true {
		t.Errorf("body = %v, want empty_queue true", body)
	}
}

func TestStartSessionUnknownUser(t *testing.T) {
	cards := &fakeCardRepo{states: map[string]models.CardMemoryState{}}
	router, _ := testRouter(cards)

	w := doJSON(t, router, http.MethodPost, "/api/review-sessions", gin.H{"user_id": 99})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSubmitRatingErrorMapping(t *testing.T) {
	cards := &fakeCardRepo{states: map[string]models.CardMemoryState{
		"c1": dueCard("c1"),
		"c2": dueCard("c2"),
	}}
	router, controller := testRouter(cards)

	sess, err := controller.StartSession(context.Background(), 1, t0, 10, 0)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	head := sess.Queue[0]
	other := sess.Queue[1]

	tests := []struct {
		name string
		path string
		body gin.H
		want int
	}{
		{"invalid rating", "/api/review-sessions/" + sess.ID + "/ratings", gin.H{"card_id": head, "rating": 7}, http.StatusBadRequest},
		{"out of order", "/api/review-sessions/" + sess.ID + "/ratings", gin.H{"card_id": other, "rating": 3}, http.StatusConflict},
		{"unknown session", "/api/review-sessions/nope/ratings", gin.H{"card_id": head, "rating": 3}, http.StatusNotFound},
		{"missing card id", "/api/review-sessions/" + sess.ID + "/ratings", gin.H{"rating": 3}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetCardState(t *testing.T) {
	cards := &fakeCardRepo{states: map[string]models.CardMemoryState{"c1": dueCard("c1")}}
	router, _ := testRouter(cards)

	w := doJSON(t, router, http.MethodGet, "/api/cards/c1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var state models.CardMemoryState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.CardID != "c1" || state.Version != 1 {
		t.Errorf("state = %+v, want c1 at version 1", state)
	}

	w = doJSON(t, router, http.MethodGet, "/api/cards/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
