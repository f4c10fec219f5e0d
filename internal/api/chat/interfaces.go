package chat

import (
	"context"

	"github.com/futig/faq-assistant/internal/entity"
)

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
