// Package telegram provides the Telegram Bot API client used to reach
// emergency contacts.
package telegram

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"CampusSafe/pkg/logger"
	"CampusSafe/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the chunk size used when splitting long messages.
// Telegram's hard limit is 4096.
const MaxMessageLength = 4000

// Bot wraps tgbotapi.BotAPI for outbound alerts.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logger.Logger
	mu     sync.Mutex
}

// NewBot validates the token via an API call and returns a ready Bot.
// Returns (nil, nil) when token is empty (Telegram not configured).
func NewBot(token string, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	api.Debug = false

	if log == nil {
		log = logger.Nop()
	}
	log.Info("Telegram bot @%s ready", api.Self.UserName)

	return &Bot{
		api:    api,
		logger: log,
	}, nil
}

// SendMessageToChat sends a Markdown-formatted message to a specific chat.
// Messages longer than MaxMessageLength are split.
func (b *Bot) SendMessageToChat(chatID int64, text string) error {
	if chatID == 0 {
		return fmt.Errorf("chat id is not set")
	}

	for _, part := range splitText(text, MaxMessageLength) {
		if err := b.sendSingleMessage(chatID, part); err != nil {
			return err
		}
	}
	return nil
}

// sendSingleMessage sends one message with Markdown parse mode.
// On parse error, it retries without formatting.
func (b *Bot) sendSingleMessage(chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(msg)
	if err != nil && isParseError(err) {
		b.logger.Warn("Markdown parse error, retrying without formatting: %v", err)
		msg.ParseMode = ""
		_, err = b.api.Send(msg)
	}
	return err
}

// Username returns the bot's Telegram username, or "" if the bot is nil.
func (b *Bot) Username() string {
	if b == nil || b.api == nil {
		return ""
	}
	return b.api.Self.UserName
}

// ValidateToken checks if a bot token is valid by calling the Telegram API.
// Returns the bot username on success.
func ValidateToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return "", err
	}
	return api.Self.UserName, nil
}

// EscapeMarkdown escapes the characters legacy Markdown treats as markup.
func EscapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}

// splitText splits text into chunks of at most maxLen bytes, preferring to
// break at newlines and never inside a UTF-8 sequence.
func splitText(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}

		splitPos := utils.RuneBoundary(text, maxLen)
		if nl := strings.LastIndex(text[:splitPos], "\n"); nl > maxLen/2 {
			splitPos = nl + 1
		}
		if splitPos == 0 {
			_, splitPos = utf8.DecodeRuneInString(text)
		}

		parts = append(parts, text[:splitPos])
		text = text[splitPos:]
	}
	return parts
}

// isParseError returns true if the error is a Telegram parse/markdown error.
func isParseError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "can't parse")
}
