package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	pkgRetry "github.com/futig/faq-assistant/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MessageSender provides centralized message sending with retries
type MessageSender struct {
	bot      BotAPI
	retryCfg *pkgRetry.RetryConfig
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(bot BotAPI, retryCfg *pkgRetry.RetryConfig) *MessageSender {
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}

	return &MessageSender{
		bot:      bot,
		retryCfg: retryCfg,
	}
}

// Send sends a message to the specified chat
func (s *MessageSender) Send(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if err := s.send(ctx, msg); err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return err
	}

	return nil
}

// SendDocument uploads a file to the chat
func (s *MessageSender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	})

	if err := s.send(ctx, doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}

// Delete removes a message. Used to drop messages carrying secrets.
func (s *MessageSender) Delete(ctx context.Context, chatID int64, messageID int) error {
	err := retry.Do(
		func() error {
			_, err := s.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
			return err
		},
		s.options(ctx)...,
	)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	return nil
}

func (s *MessageSender) send(ctx context.Context, c tgbotapi.Chattable) error {
	return retry.Do(
		func() error {
			_, err := s.bot.Send(c)
			return err
		},
		s.options(ctx)...,
	)
}

func (s *MessageSender) options(ctx context.Context) []retry.Option {
	return s.retryCfg.Options(ctx,
		retry.RetryIf(isRetryable),
		pkgRetry.ServerDelay(retryAfter),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Debug(ctx, "retrying telegram request",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// retryAfter reads the flood-control wait Telegram attaches to 429 answers
func retryAfter(err error) time.Duration {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	return 0
}

// isRetryable skips retries for requests Telegram rejected as invalid
func isRetryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	return true
}
