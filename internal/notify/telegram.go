package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/revise/internal/logger"
)

// TelegramNotifier sends due-card reminders through a Telegram bot.
type TelegramNotifier struct {
	log *logger.Logger
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier authenticates the bot with the given token.
func NewTelegramNotifier(log *logger.Logger, token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{
		log: log.With("component", "telegram_notifier"),
		api: api,
	}, nil
}

// SendDueReminder tells the user how many cards are waiting for review.
func (n *TelegramNotifier) SendDueReminder(chatID int64, dueCount int) error {
	text := fmt.Sprintf("You have %d card(s) due for review. Time for a quick session!", dueCount)
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram reminder: %w", err)
	}
	return nil
}
