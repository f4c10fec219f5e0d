package middleware

import (
	"context"
	"time"

	"github.com/futig/faq-assistant/internal/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// LoggingMiddleware logs all incoming updates and scopes the context logger to the update
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware() *LoggingMiddleware {
	return &LoggingMiddleware{}
}

// Handle logs the update
func (m *LoggingMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next Next) {
	start := time.Now()
	userID, chatID, _ := origin(update)

	ctx = logger.AddFields(ctx,
		zap.Int("update_id", update.UpdateID),
		zap.Int64("user_id", userID),
		logger.Chat(chatID),
	)

	ctxzap.Info(ctx, "telegram update received", zap.String("type", updateType(update)))

	next(ctx, update)

	ctxzap.Info(ctx, "telegram update processed", zap.Duration("duration", time.Since(start)))
}

func updateType(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message == nil:
		return "other"
	case update.Message.IsCommand():
		// Command arguments may carry an api key, so only the type is logged
		return "command"
	case update.Message.Text != "":
		return "text"
	default:
		return "other"
	}
}
