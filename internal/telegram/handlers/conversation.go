package handlers

import (
	"context"
	"fmt"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/telegram/keyboard"
	"github.com/futig/faq-assistant/internal/telegram/render"
	"github.com/futig/faq-assistant/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// conversation holds the actions reachable from both commands and buttons
type conversation struct {
	BaseHandler
	chatUC       ChatUsecase
	stateManager *state.Manager
	formats      *formatter.Factory
	keyboard     *keyboard.Builder
}

func (c *conversation) reset(ctx context.Context, chatID int64) error {
	session, err := c.stateManager.EnsureSession(ctx, chatID)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}

	if _, err := c.chatUC.ResetSession(ctx, session.ID); err != nil {
		c.HandleError(ctx, chatID, err)
		return nil
	}

	ctxzap.Info(ctx, "chat cleared", logger.Session(session.ID))
	c.sendMessage(ctx, chatID, render.MsgChatCleared, nil)
	return nil
}

func (c *conversation) showExportMenu(ctx context.Context, chatID int64) {
	c.sendMessage(ctx, chatID, render.MsgChooseFormat, c.keyboard.ExportKeyboard())
}

func (c *conversation) export(ctx context.Context, chatID int64, format entity.ResultFormat) error {
	fmtr, err := c.formats.Create(format)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return nil
	}

	sessionID, ok := c.stateManager.SessionID(ctx, chatID)
	if !ok {
		c.sendMessage(ctx, chatID, render.MsgEmptyTranscript, nil)
		return nil
	}

	transcript, err := c.chatUC.ExportTranscript(ctx, sessionID)
	if err != nil {
		c.HandleError(ctx, chatID, err)
		return nil
	}

	if len(transcript.History) == 0 {
		c.sendMessage(ctx, chatID, render.MsgEmptyTranscript, nil)
		return nil
	}

	data, err := fmtr.Format(transcript)
	if err != nil {
		return fmt.Errorf("format transcript: %w", err)
	}

	filename := "transcript" + fmtr.FileExtension()
	if err := c.messageSender.SendDocument(ctx, chatID, filename, data); err != nil {
		return err
	}

	ctxzap.Info(ctx, "transcript exported",
		logger.Session(sessionID),
		zap.String("format", string(format)),
		zap.Int("turns", len(transcript.History)),
	)
	return nil
}
