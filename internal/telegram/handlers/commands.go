package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/futig/faq-assistant/internal/telegram/keyboard"
	"github.com/futig/faq-assistant/internal/telegram/render"
	"github.com/futig/faq-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot commands
const (
	CommandStart     = "start"
	CommandHelp      = "help"
	CommandReset     = "reset"
	CommandThreshold = "threshold"
	CommandKey       = "key"
	CommandExport    = "export"
	CommandEnd       = "end"
)

const thresholdDefaultArg = "default"

// CommandHandler handles slash commands
type CommandHandler struct {
	conversation
	validator *validator.Validator
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(
	sender *MessageSender,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	validator *validator.Validator,
	formats *formatter.Factory,
	kb *keyboard.Builder,
) *CommandHandler {
	return &CommandHandler{
		conversation: conversation{
			BaseHandler: BaseHandler{
				route:         RouteCommand,
				messageSender: sender,
			},
			chatUC:       chatUC,
			stateManager: stateManager,
			formats:      formats,
			keyboard:     kb,
		},
		validator: validator,
	}
}

// Handle routes a command to its action
func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "command_"+msg.Command)

	switch msg.Command {
	case CommandStart:
		return h.handleStart(ctx, msg)
	case CommandHelp:
		h.sendMessage(ctx, msg.ChatID, render.MsgHelp, nil)
		return nil
	case CommandReset:
		return h.reset(ctx, msg.ChatID)
	case CommandThreshold:
		return h.handleThreshold(ctx, msg)
	case CommandKey:
		return h.handleKey(ctx, msg)
	case CommandExport:
		h.showExportMenu(ctx, msg.ChatID)
		return nil
	case CommandEnd:
		return h.handleEnd(ctx, msg)
	default:
		h.sendMessage(ctx, msg.ChatID, render.ErrUnknownCommand, nil)
		return nil
	}
}

func (h *CommandHandler) handleStart(ctx context.Context, msg *Message) error {
	if _, err := h.stateManager.EnsureSession(ctx, msg.ChatID); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	h.sendMessage(ctx, msg.ChatID, render.MsgWelcome, h.keyboard.ChatKeyboard())
	return nil
}

func (h *CommandHandler) handleThreshold(ctx context.Context, msg *Message) error {
	session, err := h.stateManager.EnsureSession(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	arg := strings.TrimSpace(msg.CommandArgs)
	if arg == "" {
		current := render.RenderThreshold(h.chatUC.SessionThreshold(session))
		h.sendMessage(ctx, msg.ChatID, fmt.Sprintf(render.MsgThresholdCurrent, current)+"\n"+render.MsgThresholdUsage, nil)
		return nil
	}

	var settings entity.SessionSettings
	if strings.EqualFold(arg, thresholdDefaultArg) {
		settings.ClearThreshold = true
	} else {
		threshold, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			h.sendMessage(ctx, msg.ChatID, render.MsgThresholdUsage, nil)
			return nil
		}
		if err := h.validator.ValidateThreshold(&threshold); err != nil {
			h.HandleError(ctx, msg.ChatID, err)
			return nil
		}
		settings.Threshold = &threshold
	}

	updated, err := h.chatUC.UpdateSettings(ctx, session.ID, settings)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	threshold := render.RenderThreshold(h.chatUC.SessionThreshold(updated))
	h.sendMessage(ctx, msg.ChatID, fmt.Sprintf(render.MsgThresholdSet, threshold), nil)
	return nil
}

func (h *CommandHandler) handleKey(ctx context.Context, msg *Message) error {
	key := strings.TrimSpace(msg.CommandArgs)
	if key == "" {
		h.sendMessage(ctx, msg.ChatID, render.MsgKeyUsage, nil)
		return nil
	}

	// The key must not stay in the chat history
	if err := h.messageSender.Delete(ctx, msg.ChatID, msg.MessageID); err != nil {
		ctxzap.Warn(ctx, "failed to delete message with api key", zap.Error(err))
	}

	session, err := h.stateManager.EnsureSession(ctx, msg.ChatID)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	if _, err := h.chatUC.UpdateSettings(ctx, session.ID, entity.SessionSettings{Credential: &key}); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(ctx, msg.ChatID, render.MsgKeySaved, nil)
	return nil
}

func (h *CommandHandler) handleEnd(ctx context.Context, msg *Message) error {
	sessionID, ok := h.stateManager.SessionID(ctx, msg.ChatID)
	if ok {
		if err := h.chatUC.EndSession(ctx, sessionID); err != nil && !errors.Is(err, entity.ErrSessionNotFound) {
			h.HandleError(ctx, msg.ChatID, err)
			return nil
		}
		h.stateManager.Forget(ctx, msg.ChatID)
	}

	h.sendMessage(ctx, msg.ChatID, render.MsgSessionEnded, nil)
	return nil
}
