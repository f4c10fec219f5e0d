package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/formatter"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/pkg/response"
	"github.com/futig/faq-assistant/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
	formats   *formatter.Factory
}

func NewHandler(
	usecase ChatUsecase,
	validator *validator.Validator,
	formats *formatter.Factory,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
		formats:   formats,
	}
}

// StartSession handles POST /chat-session - Start new conversation
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	session, err := h.usecase.StartSession(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, toSessionDTO(session, h.usecase.SessionThreshold(session)))
}

// GetSession handles GET /chat-session/{id} - Get state and history
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "GetSession", sessionID)

	ctxzap.Debug(ctx, "fetching session")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session, h.usecase.SessionThreshold(session)))
}

// SubmitTurn handles POST /chat-session/{id}/turn - Answer one user message
func (h *Handler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "SubmitTurn", sessionID)

	var req entity.SubmitTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSubmitTurn(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "submitting turn", zap.Int("text_length", len(req.Text)))

	result, err := h.usecase.HandleTurn(ctx, sessionID, entity.TurnInput{
		Text:       req.Text,
		Threshold:  req.Threshold,
		Credential: r.Header.Get(entity.CredentialHeader),
	})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, result)
}

// ResetSession handles POST /chat-session/{id}/reset - Clear the conversation
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "ResetSession", sessionID)

	if _, err := h.usecase.ResetSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// UpdateSettings handles PATCH /chat-session/{id}/settings - Change threshold or credential
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "UpdateSettings", sessionID)

	var req entity.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateUpdateSettings(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.UpdateSettings(ctx, sessionID, toSessionSettings(&req))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toSessionDTO(session, h.usecase.SessionThreshold(session)))
}

// GetTranscript handles GET /chat-session/{id}/transcript - Download the conversation
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "GetTranscript", sessionID)

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.ResultFormat(formatParam)
	if err := h.validator.ValidateFormat(format); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter", err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	transcript, err := h.usecase.ExportTranscript(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	fmtr, err := h.formats.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	body, err := fmtr.Format(transcript)
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format transcript", err)
		return
	}

	ctxzap.Info(ctx, "transcript exported", zap.Int("turns", len(transcript.History)))
	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"transcript-%s%s\"", sessionID, fmtr.FileExtension()))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// EndSession handles DELETE /chat-session/{id} - Drop the session
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(r.Context(), "EndSession", sessionID)

	if err := h.usecase.EndSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}

	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	var fallbackErr *entity.FallbackError

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrMissingCredential):
		h.respondError(ctx, w, http.StatusUnauthorized, "API key for the generative service is missing", err)
	case errors.Is(err, entity.ErrTurnInProgress):
		h.respondError(ctx, w, http.StatusConflict, "another message is still being answered", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) || errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.As(err, &fallbackErr):
		status := http.StatusBadGateway
		if fallbackErr.Kind == entity.FailureTimeout {
			status = http.StatusGatewayTimeout
		}
		ctxzap.Warn(ctx, "generative service failed", zap.String("kind", string(fallbackErr.Kind)), zap.Error(err))
		response.FallbackError(w, status, fallbackErr)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
