package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	actionKey  = "action"
	sessionKey = "session_id"
	chatKey    = "chat_id"
)

// AddFields scopes the context logger with fields
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction names the flow the following log lines belong to
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String(actionKey, action))
}

// WithSession is WithAction for flows bound to one conversation
func WithSession(ctx context.Context, action, sessionID string) context.Context {
	return AddFields(ctx, zap.String(actionKey, action), Session(sessionID))
}

func Session(sessionID string) zap.Field {
	return zap.String(sessionKey, sessionID)
}

func Chat(chatID int64) zap.Field {
	return zap.Int64(chatKey, chatID)
}
