package service

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/sirupsen/logrus"
)

// TelegramNotifier sends operator alerts to a configured admin chat.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	logger *logrus.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *logrus.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) NotifyOutOfStock(ctx context.Context, serviceName string) {
	n.send(ctx, fmt.Sprintf("Out of stock: a buyer tried to purchase %q but no numbers are available", serviceName))
}

func (n *TelegramNotifier) NotifyUnmatchedOTP(ctx context.Context, phoneNumber string) {
	n.send(ctx, fmt.Sprintf("Unmatched OTP: delivery for %s found no pending order", phoneNumber))
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Errorf("Failed to send operator alert: %v", err)
	}
}

// NopNotifier is used when no bot token is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyOutOfStock(context.Context, string)   {}
func (NopNotifier) NotifyUnmatchedOTP(context.Context, string) {}
