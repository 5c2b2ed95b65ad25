package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fieldbot/internal/domain"
)

const (
	telegramMaxMsgLen      = 4000
	telegramMaxSendRetries = 3
	telegramAskTimeout     = 60 * time.Second
)

// Telegram implements domain.Channel over the Telegram bot API. Each allowed
// Telegram user is bound to exactly one agent account; messages from unbound
// users are refused.
type Telegram struct {
	token     string
	parseMode string
	bindings  map[int64]int64 // telegram user ID -> agent ID

	bot       *tgbotapi.BotAPI
	responder domain.Responder
	logger    *slog.Logger
}

type TelegramConfig struct {
	Token     string
	ParseMode string
	// Bindings maps Telegram user IDs (as strings, the JSON key type) to
	// agent IDs.
	Bindings map[string]int64
	Logger   *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.ParseMode == "" {
		cfg.ParseMode = "Markdown"
	}
	bindings := make(map[int64]int64, len(cfg.Bindings))
	for key, agentID := range cfg.Bindings {
		userID, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			cfg.Logger.Warn("skipping invalid telegram binding", "user", key)
			continue
		}
		bindings[userID] = agentID
	}
	return &Telegram{
		token:     cfg.Token,
		parseMode: cfg.ParseMode,
		bindings:  bindings,
		logger:    cfg.Logger,
	}
}

func (t *Telegram) Name() string { return "telegram" }

// Start connects to Telegram and polls for updates until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context, responder domain.Responder) error {
	t.responder = responder

	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

// Stop is a no-op: the bot stops when Start's context is cancelled, and
// StopReceivingUpdates panics when called twice.
func (t *Telegram) Stop() error {
	return nil
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	agentID, bound := t.bindings[userID]
	if !bound {
		t.logger.Warn("unbound telegram user",
			"user_id", userID,
			"username", update.Message.From.UserName,
		)
		t.sendMessage(chatID, "This account is not linked to an agent. Ask your administrator to bind your Telegram ID.")
		return
	}

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	if update.Message.IsCommand() {
		t.handleCommand(chatID, update.Message)
		return
	}

	t.logger.Info("telegram message received",
		"user_id", userID,
		"agent_id", agentID,
		"text_len", len(text),
	)

	typing := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = t.bot.Send(typing)

	askCtx, cancel := context.WithTimeout(ctx, telegramAskTimeout)
	defer cancel()

	reply, err := t.responder.Ask(askCtx, agentID, text)
	if err != nil {
		t.logger.Error("telegram ask failed", "agent_id", agentID, "err", err)
		t.sendMessage(chatID, "Sorry, something went wrong handling that message.")
		return
	}
	t.sendMessage(chatID, reply)
}

func (t *Telegram) handleCommand(chatID int64, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		t.sendMessage(chatID, "Hello! I can look up your payouts and solar orders.\n\nTry:\n• payout for this week\n• orders for customer Alice Johnson\n\nCommands:\n/status — Show bot status\n/help — Show this message")
	case "help":
		t.sendMessage(chatID, "*Help*\n\nAsk me about:\n• Payouts for this week, month, year, or last month\n• Payouts for a custom range (from YYYY-MM-DD to YYYY-MM-DD)\n• Orders for a specific customer\n\nCommands:\n/status — Bot status")
	case "status":
		t.sendMessage(chatID, fmt.Sprintf("Bot: @%s\nYour ID: %d", t.bot.Self.UserName, msg.From.ID))
	default:
		t.sendMessage(chatID, "Unknown command. Type /help for available commands.")
	}
}

// sendMessage splits long replies into chunks under the Telegram message
// limit, cutting on newlines where possible.
func (t *Telegram) sendMessage(chatID int64, text string) {
	const maxLen = telegramMaxMsgLen
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxLen {
			cutAt := strings.LastIndex(chunk[:maxLen], "\n")
			if cutAt < maxLen/2 {
				cutAt = maxLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}

		t.sendChunk(chatID, chunk)
	}
}

// sendChunk sends one chunk with retry and rate limit handling. Markdown is
// tried first; a parse error falls back to plain text.
func (t *Telegram) sendChunk(chatID int64, text string) {
	const maxRetries = telegramMaxSendRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		msg := tgbotapi.NewMessage(chatID, text)
		if attempt == 0 && t.parseMode != "" {
			msg.ParseMode = t.parseMode
		}

		_, err := t.bot.Send(msg)
		if err == nil {
			return
		}

		errStr := err.Error()

		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1,
			)
			time.Sleep(retryAfter)
			continue
		}

		if attempt == 0 && msg.ParseMode != "" &&
			strings.Contains(errStr, "can't parse entities") {
			t.logger.Warn("telegram markdown parse error, retrying as plain text",
				"err", err, "parseMode", t.parseMode,
			)
			plainMsg := tgbotapi.NewMessage(chatID, text)
			if _, err2 := t.bot.Send(plainMsg); err2 == nil {
				return
			}
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt+1) * time.Second
			t.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
			time.Sleep(backoff)
			continue
		}

		t.logger.Error("telegram send failed after retries", "err", err, "attempts", maxRetries+1)
	}
}
