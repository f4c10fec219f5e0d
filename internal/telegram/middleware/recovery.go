package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/futig/faq-assistant/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panicking handler into a logged error and a generic reply
type RecoveryMiddleware struct {
	bot Sender
}

func NewRecoveryMiddleware(bot Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{bot: bot}
}

func (m *RecoveryMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next Next) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		ctxzap.Error(ctx, "telegram handler panicked",
			zap.String("panic", fmt.Sprint(r)),
			zap.ByteString("stack", debug.Stack()),
		)
		m.apologize(ctx, update)
	}()

	next(ctx, update)
}

func (m *RecoveryMiddleware) apologize(ctx context.Context, update tgbotapi.Update) {
	_, chatID, _ := origin(update)
	if chatID == 0 {
		return
	}
	if _, err := m.bot.Send(tgbotapi.NewMessage(chatID, render.ErrGeneric)); err != nil {
		ctxzap.Warn(ctx, "panic reply not delivered", zap.Error(err))
	}
}
