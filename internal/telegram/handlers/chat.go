package handlers

import (
	"context"
	"fmt"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/futig/faq-assistant/internal/telegram/keyboard"
	"github.com/futig/faq-assistant/internal/telegram/state"
)

// ChatHandler answers plain text messages
type ChatHandler struct {
	BaseHandler
	bot          BotAPI
	chatUC       ChatUsecase
	stateManager *state.Manager
	validator    *validator.Validator
	keyboard     *keyboard.Builder
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	bot BotAPI,
	sender *MessageSender,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	validator *validator.Validator,
	kb *keyboard.Builder,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler: BaseHandler{
			route:         RouteText,
			messageSender: sender,
		},
		bot:          bot,
		chatUC:       chatUC,
		stateManager: stateManager,
		validator:    validator,
		keyboard:     kb,
	}
}

// Handle runs one conversation turn for the message
func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "chat_turn")

	if err := h.validator.ValidateSubmitTurn(&entity.SubmitTurnRequest{Text: msg.Text}); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	session, err := h.stateManager.EnsureSession(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	ctx = logger.AddFields(ctx, logger.Session(session.ID))

	typing := NewTypingNotifier(h.bot, msg.ChatID)
	typing.Start(ctx)
	result, err := h.chatUC.HandleTurn(ctx, session.ID, entity.TurnInput{Text: msg.Text})
	typing.Stop()

	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(ctx, msg.ChatID, result.Answer, h.keyboard.ChatKeyboard())
	return nil
}
