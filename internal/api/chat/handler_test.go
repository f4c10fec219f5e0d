package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/matcher"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/futig/faq-assistant/internal/repository"
	chatuc "github.com/futig/faq-assistant/internal/usecase/chat"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompleter struct {
	answer string
	err    error
}

func (s *stubCompleter) Complete(_ context.Context, _ *entity.CompletionRequest) (string, error) {
	return s.answer, s.err
}

func newTestRouter(t *testing.T, completer chatuc.Completer) http.Handler {
	t.Helper()

	m, err := matcher.New(entity.DefaultCorpus)
	require.NoError(t, err)

	orchestrator := chatuc.NewOrchestrator(m, completer, chatuc.OrchestratorConfig{
		Threshold:       0.75,
		Model:           "gpt-4o",
		Temperature:     0.7,
		MaxTokens:       1000,
		FallbackTimeout: time.Second,
	})
	usecase := chatuc.NewUsecase(repository.NewSessionMemory(time.Minute, time.Minute), orchestrator, zap.NewNop())
	handler := NewHandler(usecase, validator.NewValidator(config.InputConfig{MaxTextLength: 100}), formatter.NewFactory())

	r := chi.NewRouter()
	RegisterRoutes(r, handler)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) entity.SessionDTO {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/chat-session/", nil, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var dto entity.SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestStartSession(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})

	dto := createSession(t, h)
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, entity.SessionStateAwaitingInput, dto.State)
	assert.Equal(t, 0.75, dto.Threshold)
	assert.Empty(t, dto.History)
	assert.False(t, dto.HasCredential)
}

func TestGetSession_NotFound(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})

	rec := do(t, h, http.MethodGet, "/chat-session/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitTurn_CorpusAnswer(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{answer: "unused"})
	session := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/chat-session/"+session.ID+"/turn",
		entity.SubmitTurnRequest{Text: entity.DefaultCorpus[0].Question},
		map[string]string{entity.CredentialHeader: "sk-test"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var result entity.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entity.AnswerSourceCorpus, result.Source)
	assert.Equal(t, entity.DefaultCorpus[0].Answer, result.Answer)

	rec = do(t, h, http.MethodGet, "/chat-session/"+session.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto entity.SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Len(t, dto.History, 2)
	assert.NotContains(t, rec.Body.String(), "sk-test")
}

func TestSubmitTurn_MissingCredential(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})
	session := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/chat-session/"+session.ID+"/turn", entity.SubmitTurnRequest{Text: "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitTurn_FallbackFailure(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{err: entity.NewFallbackError(entity.FailureAuth, "invalid api key", nil)})
	session := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/chat-session/"+session.ID+"/turn",
		entity.SubmitTurnRequest{Text: "Who won the 1998 World Cup?"},
		map[string]string{entity.CredentialHeader: "sk-bad"},
	)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "auth", decodeError(t, rec).Kind)

	rec = do(t, h, http.MethodGet, "/chat-session/"+session.ID, nil, nil)
	var dto entity.SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Len(t, dto.History, 1)
	assert.Equal(t, entity.RoleUser, dto.History[0].Role)
	assert.NotNil(t, dto.LastError)
}

func TestSubmitTurn_FallbackTimeout(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{err: entity.NewFallbackError(entity.FailureTimeout, "", nil)})
	session := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/chat-session/"+session.ID+"/turn",
		entity.SubmitTurnRequest{Text: "random"},
		map[string]string{entity.CredentialHeader: "sk"},
	)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestSubmitTurn_Validation(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})
	session := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/chat-session/"+session.ID+"/turn",
		entity.SubmitTurnRequest{Text: strings.Repeat("x", 101)},
		map[string]string{entity.CredentialHeader: "sk"},
	)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/chat-session/"+session.ID+"/turn", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSettingsAndReset(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{answer: "from the model"})
	session := createSession(t, h)
	path := "/chat-session/" + session.ID

	key := "sk-session"
	threshold := 0.7
	rec := do(t, h, http.MethodPatch, path+"/settings", entity.UpdateSettingsRequest{Threshold: &threshold, Credential: &key}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto entity.SessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, 0.7, dto.Threshold)
	assert.True(t, dto.HasCredential)

	// stored credential and threshold are used, the short EVA question now resolves in the corpus
	rec = do(t, h, http.MethodPost, path+"/turn", entity.SubmitTurnRequest{Text: "What does EVA do?"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result entity.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, entity.AnswerSourceCorpus, result.Source)

	rec = do(t, h, http.MethodPost, path+"/reset", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, path, nil, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Empty(t, dto.History)
	assert.True(t, dto.HasCredential)

	rec = do(t, h, http.MethodPatch, path+"/settings", entity.UpdateSettingsRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTranscript(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})
	session := createSession(t, h)
	path := "/chat-session/" + session.ID

	rec := do(t, h, http.MethodPost, path+"/turn",
		entity.SubmitTurnRequest{Text: entity.DefaultCorpus[2].Question},
		map[string]string{entity.CredentialHeader: "sk"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, path+"/transcript", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "transcript-"+session.ID+".md")
	assert.Contains(t, rec.Body.String(), entity.DefaultCorpus[2].Answer)

	rec = do(t, h, http.MethodGet, path+"/transcript?format=pdf", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = do(t, h, http.MethodGet, path+"/transcript?format=xls", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEndSession(t *testing.T) {
	h := newTestRouter(t, &stubCompleter{})
	session := createSession(t, h)

	rec := do(t, h, http.MethodDelete, "/chat-session/"+session.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/chat-session/"+session.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
