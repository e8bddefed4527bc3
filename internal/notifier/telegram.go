package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"kollektivet/internal/config"
	"kollektivet/internal/models"
)

// TelegramNotifier posts freshly submitted quotes to the house group chat.
// A nil notifier is valid and does nothing.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(cfg *config.Config, logger *zap.Logger) (*TelegramNotifier, error) {
	if !cfg.Notifications.Enabled || cfg.Notifications.TelegramBotToken == "" {
		logger.Info("Telegram notifier is disabled (notifications.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram notifier authorized", zap.String("username", botAPI.Self.UserName))

	return &TelegramNotifier{
		api:    botAPI,
		chatID: cfg.Notifications.TelegramChatID,
		logger: logger,
	}, nil
}

// QuoteSubmitted sends a fire-and-forget notification. Failures are logged
// and never surface to the request that created the quote.
func (n *TelegramNotifier) QuoteSubmitted(quote *models.Quote) {
	if n == nil {
		return
	}

	text := fmt.Sprintf("💬 Nytt sitat!\n\n«%s»\n— %s", quote.Text, quote.Author)
	if quote.Context != nil && *quote.Context != "" {
		text += fmt.Sprintf("\n(%s)", *quote.Context)
	}

	go func() {
		msg := tgbotapi.NewMessage(n.chatID, text)
		if _, err := n.api.Send(msg); err != nil {
			n.logger.Error("Failed to send quote notification", zap.Error(err))
		}
	}()
}
