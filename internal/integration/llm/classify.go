package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/futig/faq-assistant/internal/entity"
	pkghttp "github.com/futig/faq-assistant/pkg/http"
	"github.com/sashabaranov/go-openai"
)

// kindForStatus maps an HTTP status returned by the service to a failure kind
func kindForStatus(status int) entity.FailureKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return entity.FailureAuth
	case status == http.StatusTooManyRequests:
		return entity.FailureRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return entity.FailureTimeout
	case status >= 500:
		return entity.FailureUnavailable
	case status >= 400:
		return entity.FailureMalformed
	default:
		return entity.FailureUnknown
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classify turns a transport or SDK error into a *entity.FallbackError.
// Errors that are already classified pass through unchanged.
func classify(err error) *entity.FallbackError {
	var fallbackErr *entity.FallbackError
	if errors.As(err, &fallbackErr) {
		return fallbackErr
	}

	// Timeouts win over everything else, the SDK wraps them in its own types
	if isTimeout(err) {
		return entity.NewFallbackError(entity.FailureTimeout, "request timed out", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return entity.NewFallbackError(kindForStatus(apiErr.HTTPStatusCode), apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return entity.NewFallbackError(kindForStatus(reqErr.HTTPStatusCode), http.StatusText(reqErr.HTTPStatusCode), err)
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.StatusCode)
		if httpErr.RetryAfter > 0 {
			message = fmt.Sprintf("%s, retry after %s", message, httpErr.RetryAfter)
		}
		return entity.NewFallbackError(kindForStatus(httpErr.StatusCode), message, err)
	}

	var decodeErr *pkghttp.DecodeError
	if errors.As(err, &decodeErr) {
		return entity.NewFallbackError(entity.FailureMalformed, "response is not valid JSON", err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return entity.NewFallbackError(entity.FailureMalformed, "response is not valid JSON", err)
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return entity.NewFallbackError(entity.FailureNetwork, "service unreachable", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return entity.NewFallbackError(entity.FailureNetwork, "service unreachable", err)
	}

	if errors.Is(err, context.Canceled) {
		return entity.NewFallbackError(entity.FailureUnknown, "request canceled", err)
	}

	return entity.NewFallbackError(entity.FailureUnknown, "", err)
}

func toWireMessages(turns []entity.Turn) []entity.LLMChatMessage {
	messages := make([]entity.LLMChatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, entity.LLMChatMessage{Role: string(t.Role), Content: t.Content})
	}
	return messages
}
