package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/futig/faq-assistant/internal/telegram/render"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type ErrorSeverity int

const (
	// SeverityWarning is an expected outcome the user can fix
	SeverityWarning ErrorSeverity = iota
	// SeverityError needs attention from whoever runs the bot
	SeverityError
)

func (s ErrorSeverity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// HandlerError is an error resolved into what the user sees and how it is logged
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// domainRules map sentinel errors to replies. First match wins.
var domainRules = []struct {
	targets []error
	reply   func(error) string
	log     string
}{
	{[]error{entity.ErrSessionNotFound}, static(render.ErrSessionNotFound), "session not found"},
	{[]error{entity.ErrMissingCredential}, static(render.ErrMissingKey), "credential missing"},
	{[]error{entity.ErrTurnInProgress}, static(render.ErrTurnInProgress), "turn in progress"},
	{
		[]error{entity.ErrInvalidParameter, entity.ErrMissingField, entity.ErrInvalidFormat},
		func(err error) string { return render.RenderInvalidInput(err.Error()) },
		"invalid input",
	},
}

func static(message string) func(error) string {
	return func(error) string { return message }
}

func classifyHandlerError(err error) *HandlerError {
	if err == nil {
		return &HandlerError{UserMessage: render.ErrGeneric, LogMessage: "unknown error", Severity: SeverityWarning}
	}

	var fallbackErr *entity.FallbackError
	if errors.As(err, &fallbackErr) {
		severity := SeverityError
		switch fallbackErr.Kind {
		case entity.FailureAuth, entity.FailureRateLimit:
			severity = SeverityWarning
		}
		return &HandlerError{
			Err:         err,
			UserMessage: render.RenderFallbackError(fallbackErr),
			LogMessage:  "fallback failed: " + string(fallbackErr.Kind),
			Severity:    severity,
		}
	}

	for _, rule := range domainRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return &HandlerError{Err: err, UserMessage: rule.reply(err), LogMessage: rule.log, Severity: SeverityWarning}
			}
		}
	}

	resolved := &HandlerError{Err: err, UserMessage: render.ErrGeneric, LogMessage: "handler error", Severity: SeverityError}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		resolved.UserMessage, resolved.LogMessage = render.ErrTimeout, "operation timed out"
	case errors.As(err, &netErr) && netErr.Timeout():
		resolved.UserMessage, resolved.LogMessage = render.ErrTimeout, "network timeout"
	case netErr != nil:
		resolved.UserMessage, resolved.LogMessage = render.ErrNetworkIssue, "network error"
	}

	return resolved
}

// HandleError logs err at its severity and replies with the matching message
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	resolved := classifyHandlerError(err)
	fields := []zap.Field{zap.Error(resolved.Err), logger.Chat(chatID)}

	if resolved.Severity == SeverityError {
		ctxzap.Error(ctx, resolved.LogMessage, fields...)
	} else {
		ctxzap.Warn(ctx, resolved.LogMessage, fields...)
	}

	h.sendMessage(ctx, chatID, resolved.UserMessage, nil)
}
