package reminder

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/revise/internal/database"
	"github.com/example/revise/internal/logger"
)

// Notifier delivers due-card reminders. Delivery medium is a collaborator
// concern; see the notify package for the Telegram implementation.
type Notifier interface {
	SendDueReminder(chatID int64, dueCount int) error
}

// Scheduler runs the hourly reminder job: inside the configured daily
// window, users whose notification hour matches the current hour and who
// have cards due get a ping.
type Scheduler struct {
	log       *logger.Logger
	scheduler *gocron.Scheduler
	users     database.UserRepository
	cards     database.CardRepository
	notifier  Notifier
	startHour int
	endHour   int
}

// New builds the reminder scheduler. startHour and endHour bound the daily
// sending window (inclusive).
func New(log *logger.Logger, users database.UserRepository, cards database.CardRepository, notifier Notifier, startHour, endHour int) *Scheduler {
	return &Scheduler{
		log:       log.With("component", "reminder"),
		scheduler: gocron.NewScheduler(time.UTC),
		users:     users,
		cards:     cards,
		notifier:  notifier,
		startHour: startHour,
		endHour:   endHour,
	}
}

// Start schedules the hourly check and returns immediately.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates the scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	now := time.Now().UTC()
	hour := now.Hour()
	if hour < s.startHour || hour > s.endHour {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, err := s.users.UsersForReminder(ctx, hour)
	if err != nil {
		s.log.Error("failed to load users for reminder", "hour", hour, "error", err)
		return
	}

	for _, user := range users {
		if user.TelegramChatID == 0 {
			continue
		}
		count, err := s.cards.CountDue(ctx, user.ID, now)
		if err != nil {
			s.log.Error("failed to count due cards", "user_id", user.ID, "error", err)
			continue
		}
		if count == 0 {
			continue
		}
		if err := s.notifier.SendDueReminder(user.TelegramChatID, count); err != nil {
			s.log.Error("failed to send reminder", "user_id", user.ID, "error", err)
			continue
		}
		s.log.Info("reminder sent", "user_id", user.ID, "due_count", count)
	}
}

// RunManualCheck sends a reminder for one user right away, ignoring the
// notification window. Used for testing deliveries end to end.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	count, err := s.cards.CountDue(ctx, user.ID, time.Now().UTC())
	if err != nil {
		return err
	}
	if count == 0 || user.TelegramChatID == 0 {
		return nil
	}
	return s.notifier.SendDueReminder(user.TelegramChatID, count)
}
