package chat

import (
	"context"

	"github.com/futig/faq-assistant/internal/entity"
)

// Matcher scores a turn against the question bank
type Matcher interface {
	Match(query string, threshold float64) (entity.MatchResult, bool)
}

// Completer is the generative fallback service
type Completer interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (string, error)
}
