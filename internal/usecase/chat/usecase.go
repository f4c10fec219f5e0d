package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/repository"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChatUsecase implements the session lifecycle shared by the HTTP API and the Telegram bot
type ChatUsecase struct {
	sessionRepo  repository.SessionRepository
	orchestrator *Orchestrator
	locks        sync.Map // session id -> *sync.Mutex
	logger       *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	sessionRepo repository.SessionRepository,
	orchestrator *Orchestrator,
	log *zap.Logger,
) *ChatUsecase {
	uc := &ChatUsecase{
		sessionRepo:  sessionRepo,
		orchestrator: orchestrator,
		logger:       log,
	}

	// runs from the store's janitor too, where no request context exists
	sessionRepo.OnEvicted(func(sessionID string) {
		uc.locks.Delete(sessionID)
		uc.logger.Debug("session evicted", logger.Session(sessionID))
	})

	return uc
}

// acquire takes the per-session turn lock. A second caller gets ErrTurnInProgress instead of waiting.
func (uc *ChatUsecase) acquire(sessionID string) (func(), error) {
	value, _ := uc.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)

	if !mu.TryLock() {
		return nil, entity.ErrTurnInProgress
	}
	return mu.Unlock, nil
}

// lockSession loads a session under its turn lock. Ids with no stored session
// never keep a lock entry, since eviction is the only other cleanup.
func (uc *ChatUsecase) lockSession(ctx context.Context, sessionID string) (*entity.Session, func(), error) {
	if _, err := uc.sessionRepo.GetSessionByID(ctx, sessionID); err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	release, err := uc.acquire(sessionID)
	if err != nil {
		return nil, nil, err
	}

	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		// expired between the two lookups
		uc.locks.Delete(sessionID)
		release()
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	return session, release, nil
}

// StartSession creates a session ready for its first turn
func (uc *ChatUsecase) StartSession(ctx context.Context) (*entity.Session, error) {
	session := entity.NewSession(uuid.New().String(), time.Now())
	uc.orchestrator.Start(ctx, session)

	created, err := uc.sessionRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session started", logger.Session(created.ID))
	return created, nil
}

func (uc *ChatUsecase) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// SessionThreshold is the threshold a turn without an override would use
func (uc *ChatUsecase) SessionThreshold(session *entity.Session) float64 {
	return uc.orchestrator.EffectiveThreshold(session, nil)
}

// HandleTurn runs one turn under the session lock and stores the outcome.
// History changes of a failed fallback are saved too, so the user turn is kept for a retry.
func (uc *ChatUsecase) HandleTurn(ctx context.Context, sessionID string, input entity.TurnInput) (*entity.TurnResult, error) {
	session, release, err := uc.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	result, turnErr := uc.orchestrator.HandleTurn(ctx, session, input)
	if errors.Is(turnErr, entity.ErrMissingCredential) {
		return nil, turnErr
	}

	if _, err := uc.sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if turnErr != nil {
		return nil, turnErr
	}

	ctxzap.Info(ctx, "turn answered",
		zap.String("source", string(result.Source)),
		zap.Float64("score", result.Score),
		zap.Int("history_length", len(session.History)),
	)

	return result, nil
}

// ResetSession clears the conversation and keeps the settings
func (uc *ChatUsecase) ResetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, release, err := uc.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	uc.orchestrator.Reset(ctx, session)

	saved, err := uc.sessionRepo.SaveSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return saved, nil
}

// UpdateSettings changes the threshold and credential used by later turns
func (uc *ChatUsecase) UpdateSettings(ctx context.Context, sessionID string, settings entity.SessionSettings) (*entity.Session, error) {
	session, release, err := uc.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if settings.ClearThreshold {
		session.Threshold = nil
	} else if settings.Threshold != nil {
		threshold := *settings.Threshold
		session.Threshold = &threshold
	}

	if settings.Credential != nil {
		session.Credential = *settings.Credential
	}

	session.UpdatedAt = time.Now()

	saved, err := uc.sessionRepo.SaveSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	ctxzap.Info(ctx, "session settings updated",
		zap.Bool("has_threshold", saved.Threshold != nil),
		zap.Bool("has_credential", saved.HasCredential()),
	)

	return saved, nil
}

// ExportTranscript returns a copy of the conversation so far
func (uc *ChatUsecase) ExportTranscript(ctx context.Context, sessionID string) (*entity.Transcript, error) {
	session, err := uc.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &entity.Transcript{
		SessionID:  session.ID,
		History:    session.History,
		ExportedAt: time.Now(),
	}, nil
}

// EndSession drops the session. Its lock goes with the eviction.
func (uc *ChatUsecase) EndSession(ctx context.Context, sessionID string) error {
	_, release, err := uc.lockSession(ctx, sessionID)
	if err != nil {
		return err
	}
	defer release()

	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	ctxzap.Info(ctx, "session ended", logger.Session(sessionID))
	return nil
}
