package handlers

import (
	"context"

	"github.com/futig/faq-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatUsecase defines the conversation operations used by the Telegram handlers
type ChatUsecase interface {
	StartSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	SessionThreshold(session *entity.Session) float64
	HandleTurn(ctx context.Context, sessionID string, input entity.TurnInput) (*entity.TurnResult, error)
	ResetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	UpdateSettings(ctx context.Context, sessionID string, settings entity.SessionSettings) (*entity.Session, error)
	ExportTranscript(ctx context.Context, sessionID string) (*entity.Transcript, error)
	EndSession(ctx context.Context, sessionID string) error
}

// BotAPI is the subset of *tgbotapi.BotAPI the handlers call
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}
