// Package bot runs the long-poll loop that feeds chat questions into the
// answer pipeline.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vidstat/vidstat/internal/answer"
	"github.com/vidstat/vidstat/internal/telegram"
)

const (
	greeting   = "Привет! Задай вопрос о статистике видео на русском языке."
	errorReply = "Произошла ошибка при обработке запроса"
)

// Updater is the inbound side of the chat transport.
type Updater interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// Sender is the outbound side of the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Answerer resolves one question to one numeric answer string.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

type Options struct {
	PollTimeout time.Duration
	// ErrorBackoff is the pause after a failed getUpdates call.
	ErrorBackoff time.Duration
}

type Bot struct {
	updater  Updater
	sender   Sender
	answerer Answerer
	logger   *slog.Logger
	opts     Options
}

func New(updater Updater, sender Sender, answerer Answerer, logger *slog.Logger, opts Options) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = 3 * time.Second
	}
	return &Bot{
		updater:  updater,
		sender:   sender,
		answerer: answerer,
		logger:   logger,
		opts:     opts,
	}
}

// Run polls for updates until the context is cancelled. Transport errors
// are logged and retried after a backoff; they never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot loop started", "poll_timeout", b.opts.PollTimeout)

	var offset int64
	for {
		updates, err := b.updater.GetUpdates(ctx, offset, b.opts.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot loop stopped")
				return ctx.Err()
			}
			b.logger.Error("poll updates failed", "error", err)
			select {
			case <-ctx.Done():
				b.logger.Info("bot loop stopped")
				return ctx.Err()
			case <-time.After(b.opts.ErrorBackoff):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update telegram.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch {
	case text == "":
		return
	case text == "/start":
		b.reply(ctx, chatID, greeting)
		return
	}

	reply, err := b.answerer.Answer(ctx, text)
	if err != nil {
		if errors.Is(err, answer.ErrEmptyQuestion) {
			return
		}
		b.logger.Error("question failed", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, errorReply)
		return
	}

	b.logger.Info("question answered", "chat_id", chatID, "answer", reply)
	b.reply(ctx, chatID, reply)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.sender.SendMessage(ctx, chatID, text); err != nil {
		b.logger.Error("send reply failed", "chat_id", chatID, "error", err)
	}
}
