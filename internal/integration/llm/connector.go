package llm

import (
	"context"
	"strings"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/integration/common"
	pkghttp "github.com/futig/faq-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to any OpenAI-compatible chat completions endpoint over plain HTTP
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
}

func NewConnector(cfg config.LLMConnectorConfig) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig),
		config:    cfg,
	}
}

// Complete sends the conversation and returns the first choice's content
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "requesting completion via HTTP LLM service",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	wireReq := entity.LLMChatCompletionRequest{
		Model:       req.Model,
		Messages:    toWireMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp entity.LLMChatCompletionResponse
	err := c.connector.Post(ctx, c.config.ChatCompletionsPath, wireReq, &resp,
		pkghttp.WithBearerToken(req.Credential),
	)
	if err != nil {
		fallbackErr := classify(err)
		ctxzap.Warn(ctx, "completion request failed",
			zap.String("kind", string(fallbackErr.Kind)),
			zap.Error(err),
		)
		return "", fallbackErr
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", entity.NewFallbackError(entity.FailureMalformed, "response contains no choices", nil)
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "completion received", zap.Int("answer_length", len(answer)))

	return answer, nil
}
