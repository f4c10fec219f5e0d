package llm

import (
	"context"
	"strings"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/integration/common"
	pkghttp "github.com/futig/faq-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConnector uses the go-openai SDK. The credential arrives with every request,
// so a client is assembled per call on top of a shared pooled *http.Client.
type OpenAIConnector struct {
	config     config.LLMConnectorConfig
	httpClient openai.HTTPDoer
}

func NewOpenAIConnector(cfg config.LLMConnectorConfig) *OpenAIConnector {
	return &OpenAIConnector{
		config:     cfg,
		httpClient: pkghttp.NewClient(common.ClientOptions(cfg.HTTPClientConfig)...),
	}
}

func (c *OpenAIConnector) client(credential string) *openai.Client {
	clientCfg := openai.DefaultConfig(credential)
	if c.config.Url != "" {
		clientCfg.BaseURL = strings.TrimRight(c.config.Url, "/")
	}
	clientCfg.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(clientCfg)
}

// Complete sends the conversation and returns the first choice's content
func (c *OpenAIConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "requesting completion via OpenAI",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, t := range req.Messages {
		role := openai.ChatMessageRoleUser
		if t.Role == entity.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	resp, err := c.client(req.Credential).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		fallbackErr := classify(err)
		ctxzap.Warn(ctx, "completion request failed",
			zap.String("kind", string(fallbackErr.Kind)),
			zap.Error(err),
		)
		return "", fallbackErr
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", entity.NewFallbackError(entity.FailureMalformed, "no response from OpenAI", nil)
	}

	answer := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "completion received", zap.Int("answer_length", len(answer)))

	return answer, nil
}
