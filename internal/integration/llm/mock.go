package llm

import (
	"context"
	"fmt"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling any service. Used when ENABLE_MOCKS is set.
type MockConnector struct{}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting completion", zap.Int("message_count", len(req.Messages)))

	var question string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == entity.RoleUser {
			question = req.Messages[i].Content
			break
		}
	}

	return fmt.Sprintf("(mock) I don't have a stored answer for %q, but a generative model would reply here.", question), nil
}
