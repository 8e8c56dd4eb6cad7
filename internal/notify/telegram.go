package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram sends messages to one chat through the Bot API.
type Telegram struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegram authenticates the bot. A nil client uses http.DefaultClient.
func NewTelegram(botToken, chatID string, client *http.Client) (*Telegram, error) {
	if client == nil {
		client = http.DefaultClient
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	return &Telegram{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// Notify sends message as escaped MarkdownV2, retrying with a linear backoff.
func (t *Telegram) Notify(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(t.chatID, escapeMarkdownV2(message))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		if _, err := t.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.retryDelayBase * time.Duration(i+1)):
		}
	}
	return fmt.Errorf("telegram: failed after %d retries: %w", t.maxRetries, lastErr)
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
