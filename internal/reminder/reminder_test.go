package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
	"github.com/example/revise/pkg/models"
)

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

func (f *fakeUserRepo) UsersForReminder(_ context.Context, hour int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.NotificationEnabled && u.NotificationHour == hour {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeCardRepo struct {
	dueByUser map[int64]int
}

func (f *fakeCardRepo) LoadDueCards(context.Context, int64, time.Time, int, int) ([]models.CardMemoryState, error) {
	return nil, nil
}

func (f *fakeCardRepo) GetCardState(context.Context, string) (models.CardMemoryState, error) {
	return models.CardMemoryState{}, database.ErrCardNotFound
}

func (f *fakeCardRepo) SaveCardState(context.Context, string, int64, models.CardMemoryState) (bool, error) {
	return false, nil
}

func (f *fakeCardRepo) CreateCard(context.Context, models.Card, models.CardMemoryState) error {
	return nil
}

func (f *fakeCardRepo) CountDue(_ context.Context, userID int64, _ time.Time) (int, error) {
	return f.dueByUser[userID], nil
}

type fakeNotifier struct {
	sent map[int64]int // chatID -> last due count
}

func (f *fakeNotifier) SendDueReminder(chatID int64, dueCount int) error {
	if f.sent == nil {
		f.sent = make(map[int64]int)
	}
	f.sent[chatID] = dueCount
	return nil
}

func TestRunManualCheckSendsWhenCardsDue(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]models.User{
		1: {ID: 1, TelegramChatID: 100, NotificationEnabled: true},
	}}
	cards := &fakeCardRepo{dueByUser: map[int64]int{1: 7}}
	notifier := &fakeNotifier{}
	s := New(logger.NewNop(), users, cards, notifier, 0, 23)

	if err := s.RunManualCheck(context.Background(), 1); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if notifier.sent[100] != 7 {
		t.Errorf("sent = %v, want due count 7 for chat 100", notifier.sent)
	}
}

func TestRunManualCheckSkipsWhenNothingDue(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]models.User{
		1: {ID: 1, TelegramChatID: 100},
	}}
	cards := &fakeCardRepo{dueByUser: map[int64]int{}}
	notifier := &fakeNotifier{}
	s := New(logger.NewNop(), users, cards, notifier, 0, 23)

	if err := s.RunManualCheck(context.Background(), 1); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent = %v, want no reminders", notifier.sent)
	}
}

func TestRunManualCheckSkipsUsersWithoutChat(t *testing.T) {
	users := &fakeUserRepo{users: map[int64]models.User{
		1: {ID: 1, TelegramChatID: 0},
	}}
	cards := &fakeCardRepo{dueByUser: map[int64]int{1: 3}}
	notifier := &fakeNotifier{}
	s := New(logger.NewNop(), users, cards, notifier, 0, 23)

	if err := s.RunManualCheck(context.Background(), 1); err != nil {
		t.Fatalf("RunManualCheck: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent = %v, want no reminders without a chat id", notifier.sent)
	}
}
