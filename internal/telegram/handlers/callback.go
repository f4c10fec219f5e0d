package handlers

import (
	"context"
	"fmt"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/telegram/keyboard"
	"github.com/futig/faq-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline button clicks
type CallbackHandler struct {
	conversation
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	sender *MessageSender,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	formats *formatter.Factory,
	kb *keyboard.Builder,
) *CallbackHandler {
	return &CallbackHandler{
		conversation: conversation{
			BaseHandler: BaseHandler{
				route:         RouteCallback,
				messageSender: sender,
			},
			chatUC:       chatUC,
			stateManager: stateManager,
			formats:      formats,
			keyboard:     kb,
		},
	}
}

// Handle routes callback queries to appropriate actions
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctx = logger.WithAction(ctx, "callback_"+data.Action)
	ctxzap.Info(ctx, "handling callback",
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case keyboard.ActionChat:
		return h.handleAction(ctx, msg, data.Value)
	case keyboard.ActionExport:
		return h.export(ctx, msg.ChatID, entity.ResultFormat(data.Value))
	default:
		return fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

func (h *CallbackHandler) handleAction(ctx context.Context, msg *Message, value string) error {
	switch value {
	case "reset":
		return h.reset(ctx, msg.ChatID)
	case "export":
		h.showExportMenu(ctx, msg.ChatID)
		return nil
	default:
		return fmt.Errorf("unknown action: %s", value)
	}
}
