package chat

import (
	"context"
	"errors"
	"time"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// OrchestratorConfig holds the defaults applied when a turn or session does not override them
type OrchestratorConfig struct {
	Threshold         float64
	Model             string
	Temperature       float32
	MaxTokens         int
	DefaultCredential string
	FallbackTimeout   time.Duration
}

// Orchestrator decides per turn between the canonical answer and the generative fallback.
// It mutates the session it is given and holds no per-session state of its own.
type Orchestrator struct {
	matcher   Matcher
	completer Completer
	cfg       OrchestratorConfig
	now       func() time.Time
}

func NewOrchestrator(matcher Matcher, completer Completer, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		matcher:   matcher,
		completer: completer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start moves a freshly created session to AwaitingInput
func (o *Orchestrator) Start(ctx context.Context, session *entity.Session) {
	if session.State == entity.SessionStateIdle {
		o.transition(ctx, session, entity.SessionStateAwaitingInput)
	}
}

// Reset clears the history and leaves the session ready for input
func (o *Orchestrator) Reset(ctx context.Context, session *entity.Session) {
	ctxzap.Info(ctx, "resetting conversation", zap.Int("dropped_turns", len(session.History)))

	session.History = []entity.Turn{}
	session.LastError = nil
	o.transition(ctx, session, entity.SessionStateAwaitingInput)
}

// EffectiveThreshold resolves the turn override, then the session setting, then the default
func (o *Orchestrator) EffectiveThreshold(session *entity.Session, override *float64) float64 {
	if override != nil {
		return *override
	}
	if session.Threshold != nil {
		return *session.Threshold
	}
	return o.cfg.Threshold
}

// EffectiveCredential resolves the turn credential, then the session one, then the default
func (o *Orchestrator) EffectiveCredential(session *entity.Session, override string) string {
	if override != "" {
		return override
	}
	if session.Credential != "" {
		return session.Credential
	}
	return o.cfg.DefaultCredential
}

// HandleTurn processes one user turn. On a fallback failure the user turn stays in history,
// no assistant turn is added and the returned error is a *entity.FallbackError.
func (o *Orchestrator) HandleTurn(ctx context.Context, session *entity.Session, input entity.TurnInput) (*entity.TurnResult, error) {
	credential := o.EffectiveCredential(session, input.Credential)
	if credential == "" {
		return nil, entity.ErrMissingCredential
	}

	threshold := o.EffectiveThreshold(session, input.Threshold)

	o.Start(ctx, session)
	session.LastError = nil
	session.Append(entity.RoleUser, input.Text)
	o.transition(ctx, session, entity.SessionStateMatching)

	match, ok := o.matcher.Match(input.Text, threshold)
	ctxzap.Debug(ctx, "lexical match computed",
		zap.String("query", input.Text),
		zap.Float64s("scores", match.Scores),
		zap.Int("best_index", match.Index),
		zap.Float64("best_score", match.Score),
		zap.Float64("threshold", threshold),
		zap.Bool("matched", ok),
	)

	if ok {
		question := match.Entry.Question
		o.answer(ctx, session, match.Entry.Answer)

		return &entity.TurnResult{
			Answer:          match.Entry.Answer,
			Source:          entity.AnswerSourceCorpus,
			Score:           match.Score,
			Threshold:       threshold,
			MatchedQuestion: &question,
		}, nil
	}

	o.transition(ctx, session, entity.SessionStateFallback)

	answer, err := o.fallback(ctx, session, credential)
	if err != nil {
		o.fail(ctx, session, err)
		return nil, err
	}

	o.answer(ctx, session, answer)

	return &entity.TurnResult{
		Answer:    answer,
		Source:    entity.AnswerSourceFallback,
		Score:     match.Score,
		Threshold: threshold,
	}, nil
}

func (o *Orchestrator) fallback(ctx context.Context, session *entity.Session, credential string) (string, error) {
	callCtx := ctx
	if o.cfg.FallbackTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.FallbackTimeout)
		defer cancel()
	}

	messages := make([]entity.Turn, len(session.History))
	copy(messages, session.History)

	answer, err := o.completer.Complete(callCtx, &entity.CompletionRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
		Credential:  credential,
	})
	if err != nil {
		var fallbackErr *entity.FallbackError
		if errors.As(err, &fallbackErr) {
			return "", fallbackErr
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", entity.NewFallbackError(entity.FailureTimeout, "request timed out", err)
		}
		return "", entity.NewFallbackError(entity.FailureUnknown, "", err)
	}

	return answer, nil
}

func (o *Orchestrator) answer(ctx context.Context, session *entity.Session, text string) {
	session.Append(entity.RoleAssistant, text)
	o.transition(ctx, session, entity.SessionStateAwaitingInput)
}

// fail passes through Error and returns to AwaitingInput, keeping the failure visible on the session
func (o *Orchestrator) fail(ctx context.Context, session *entity.Session, err error) {
	o.transition(ctx, session, entity.SessionStateError)
	ctxzap.Warn(ctx, "fallback failed", zap.Error(err))

	message := err.Error()
	session.LastError = &message
	o.transition(ctx, session, entity.SessionStateAwaitingInput)
}

func (o *Orchestrator) transition(ctx context.Context, session *entity.Session, to entity.SessionState) {
	ctxzap.Debug(ctx, "session state transition",
		zap.String("from", string(session.State)),
		zap.String("to", string(to)),
	)
	session.State = to
	session.UpdatedAt = o.now()
}
