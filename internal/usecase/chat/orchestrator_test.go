package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	answer   string
	err      error
	delay    time.Duration
	entered  chan struct{}
	requests []*entity.CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func testOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Threshold:       0.75,
		Model:           "gpt-4o",
		Temperature:     0.7,
		MaxTokens:       1000,
		FallbackTimeout: time.Second,
	}
}

func newTestOrchestrator(t *testing.T, completer Completer, cfg OrchestratorConfig) *Orchestrator {
	t.Helper()
	m, err := matcher.New(entity.DefaultCorpus)
	require.NoError(t, err)
	return NewOrchestrator(m, completer, cfg)
}

func newStartedSession() *entity.Session {
	session := entity.NewSession("s1", time.Now())
	session.Credential = "sk-test"
	session.State = entity.SessionStateAwaitingInput
	return session
}

func ptr[T any](v T) *T {
	return &v
}

func TestHandleTurn_CanonicalQuestionReturnsStoredAnswer(t *testing.T) {
	completer := &fakeCompleter{answer: "should not be used"}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	question := entity.DefaultCorpus[2].Question
	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: question})
	require.NoError(t, err)

	assert.Equal(t, entity.AnswerSourceCorpus, result.Source)
	assert.Equal(t, entity.DefaultCorpus[2].Answer, result.Answer)
	assert.Equal(t, question, *result.MatchedQuestion)
	assert.GreaterOrEqual(t, result.Score, 0.75)
	assert.Empty(t, completer.requests)

	assert.Equal(t, []entity.Turn{
		{Role: entity.RoleUser, Content: question},
		{Role: entity.RoleAssistant, Content: entity.DefaultCorpus[2].Answer},
	}, session.History)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
}

func TestHandleTurn_ShortEVAQuestionResolvesToEVA(t *testing.T) {
	completer := &fakeCompleter{answer: "unused"}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "What does EVA do?", Threshold: ptr(0.7)})
	require.NoError(t, err)

	assert.Equal(t, entity.AnswerSourceCorpus, result.Source)
	assert.Equal(t, entity.DefaultCorpus[0].Answer, result.Answer)
	assert.Equal(t, 0.7, result.Threshold)
}

func TestHandleTurn_ShortEVAQuestionFallsBackAtDefaultThreshold(t *testing.T) {
	completer := &fakeCompleter{answer: "EVA checks eligibility."}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	// "EVA" is not a corpus token, the corpus has "(EVA)"
	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "What does EVA do?"})
	require.NoError(t, err)

	assert.Equal(t, entity.AnswerSourceFallback, result.Source)
	assert.InDelta(t, 0.7147736169681941, result.Score, 1e-9)
	assert.Len(t, completer.requests, 1)
}

func TestHandleTurn_CapitalOfFranceHitsBenefitsEntry(t *testing.T) {
	completer := &fakeCompleter{answer: "Paris."}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	// "of" occurs only in the benefits question, which is enough to clear 0.75
	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "What is the capital of France?"})
	require.NoError(t, err)

	assert.Equal(t, entity.AnswerSourceCorpus, result.Source)
	assert.Equal(t, entity.DefaultCorpus[4].Answer, result.Answer)
	require.NotNil(t, result.MatchedQuestion)
	assert.Equal(t, entity.DefaultCorpus[4].Question, *result.MatchedQuestion)
	assert.InDelta(t, 1.3889995496216843, result.Score, 1e-9)
	assert.Empty(t, completer.requests)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)

	result, err = o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "What is the capital of France?", Threshold: ptr(1.5)})
	require.NoError(t, err)
	assert.Equal(t, entity.AnswerSourceFallback, result.Source)
	assert.Equal(t, "Paris.", result.Answer)
	assert.Len(t, completer.requests, 1)
}

func TestHandleTurn_OutOfDomainFallsBack(t *testing.T) {
	completer := &fakeCompleter{answer: "France won."}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "Who won the 1998 World Cup?"})
	require.NoError(t, err)

	assert.Equal(t, entity.AnswerSourceFallback, result.Source)
	assert.Equal(t, "France won.", result.Answer)
	assert.Nil(t, result.MatchedQuestion)
	assert.Less(t, result.Score, 0.75)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Equal(t, "sk-test", req.Credential)
	assert.Equal(t, []entity.Turn{{Role: entity.RoleUser, Content: "Who won the 1998 World Cup?"}}, req.Messages)

	assert.Len(t, session.History, 2)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
}

func TestHandleTurn_FallbackReceivesFullHistory(t *testing.T) {
	completer := &fakeCompleter{answer: "fallback"}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: entity.DefaultCorpus[0].Question})
	require.NoError(t, err)
	_, err = o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "And who founded the company?"})
	require.NoError(t, err)

	require.Len(t, completer.requests, 1)
	assert.Equal(t, []entity.Turn{
		{Role: entity.RoleUser, Content: entity.DefaultCorpus[0].Question},
		{Role: entity.RoleAssistant, Content: entity.DefaultCorpus[0].Answer},
		{Role: entity.RoleUser, Content: "And who founded the company?"},
	}, completer.requests[0].Messages)
}

func TestHandleTurn_AuthFailureKeepsOnlyUserTurn(t *testing.T) {
	completer := &fakeCompleter{err: entity.NewFallbackError(entity.FailureAuth, "invalid api key", nil)}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()

	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "Who won the 1998 World Cup?"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrFallbackService)

	var fallbackErr *entity.FallbackError
	require.True(t, errors.As(err, &fallbackErr))
	assert.Equal(t, entity.FailureAuth, fallbackErr.Kind)

	assert.Equal(t, []entity.Turn{{Role: entity.RoleUser, Content: "Who won the 1998 World Cup?"}}, session.History)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
	require.NotNil(t, session.LastError)
	assert.Contains(t, *session.LastError, "auth")
}

func TestHandleTurn_UnclassifiedFailureIsWrapped(t *testing.T) {
	cause := errors.New("boom")
	o := newTestOrchestrator(t, &fakeCompleter{err: cause}, testOrchestratorConfig())

	_, err := o.HandleTurn(context.Background(), newStartedSession(), entity.TurnInput{Text: "random"})

	var fallbackErr *entity.FallbackError
	require.True(t, errors.As(err, &fallbackErr))
	assert.Equal(t, entity.FailureUnknown, fallbackErr.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestHandleTurn_FallbackTimeout(t *testing.T) {
	cfg := testOrchestratorConfig()
	cfg.FallbackTimeout = 20 * time.Millisecond
	o := newTestOrchestrator(t, &fakeCompleter{answer: "late", delay: time.Second}, cfg)
	session := newStartedSession()

	_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "random"})

	var fallbackErr *entity.FallbackError
	require.True(t, errors.As(err, &fallbackErr))
	assert.Equal(t, entity.FailureTimeout, fallbackErr.Kind)
	assert.Len(t, session.History, 1)
}

func TestHandleTurn_MissingCredential(t *testing.T) {
	completer := &fakeCompleter{answer: "unused"}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())
	session := newStartedSession()
	session.Credential = ""

	_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: entity.DefaultCorpus[0].Question})
	assert.ErrorIs(t, err, entity.ErrMissingCredential)
	assert.Empty(t, session.History)
	assert.Empty(t, completer.requests)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
}

func TestHandleTurn_CredentialPrecedence(t *testing.T) {
	completer := &fakeCompleter{answer: "ok"}
	cfg := testOrchestratorConfig()
	cfg.DefaultCredential = "sk-default"
	o := newTestOrchestrator(t, completer, cfg)

	session := newStartedSession()
	session.Credential = ""
	_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "random"})
	require.NoError(t, err)

	session.Credential = "sk-session"
	_, err = o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "random"})
	require.NoError(t, err)

	_, err = o.HandleTurn(context.Background(), session, entity.TurnInput{Text: "random", Credential: "sk-turn"})
	require.NoError(t, err)

	require.Len(t, completer.requests, 3)
	assert.Equal(t, "sk-default", completer.requests[0].Credential)
	assert.Equal(t, "sk-session", completer.requests[1].Credential)
	assert.Equal(t, "sk-turn", completer.requests[2].Credential)
}

func TestHandleTurn_ThresholdPrecedence(t *testing.T) {
	o := newTestOrchestrator(t, &fakeCompleter{answer: "fallback"}, testOrchestratorConfig())
	session := newStartedSession()

	assert.Equal(t, 0.75, o.EffectiveThreshold(session, nil))

	session.Threshold = ptr(0.5)
	assert.Equal(t, 0.5, o.EffectiveThreshold(session, nil))
	assert.Equal(t, 2.0, o.EffectiveThreshold(session, ptr(2.0)))

	// a high session threshold sends even a canonical question to the fallback
	session.Threshold = ptr(100.0)
	result, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: entity.DefaultCorpus[0].Question})
	require.NoError(t, err)
	assert.Equal(t, entity.AnswerSourceFallback, result.Source)
}

func TestHandleTurn_EmptyTextFallsBack(t *testing.T) {
	completer := &fakeCompleter{answer: "Could you rephrase?"}
	o := newTestOrchestrator(t, completer, testOrchestratorConfig())

	result, err := o.HandleTurn(context.Background(), newStartedSession(), entity.TurnInput{Text: "   ", Threshold: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, entity.AnswerSourceFallback, result.Source)
}

func TestHandleTurn_StartsIdleSession(t *testing.T) {
	o := newTestOrchestrator(t, &fakeCompleter{}, testOrchestratorConfig())
	session := entity.NewSession("s1", time.Now())
	session.Credential = "sk-test"

	_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: entity.DefaultCorpus[1].Question})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
}

func TestReset_ClearsHistory(t *testing.T) {
	o := newTestOrchestrator(t, &fakeCompleter{answer: "fallback"}, testOrchestratorConfig())
	session := newStartedSession()

	for _, entry := range entity.DefaultCorpus {
		_, err := o.HandleTurn(context.Background(), session, entity.TurnInput{Text: entry.Question})
		require.NoError(t, err)
	}
	require.Len(t, session.History, 2*len(entity.DefaultCorpus))

	session.LastError = ptr("previous failure")
	o.Reset(context.Background(), session)

	assert.Empty(t, session.History)
	assert.NotNil(t, session.History)
	assert.Nil(t, session.LastError)
	assert.Equal(t, entity.SessionStateAwaitingInput, session.State)
	assert.Equal(t, "sk-test", session.Credential)

	o.Reset(context.Background(), session)
	assert.Empty(t, session.History)
}
