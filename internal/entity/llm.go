package entity

// CompletionRequest is what the orchestrator sends to the generative service
type CompletionRequest struct {
	Model       string
	Messages    []Turn
	Temperature float32
	MaxTokens   int
	Credential  string
}

// Wire format of an OpenAI-compatible chat completions endpoint.

type LLMChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMChatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []LLMChatMessage `json:"messages"`
	Temperature float32          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
}

type LLMChatChoice struct {
	Index        int            `json:"index"`
	Message      LLMChatMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type LLMChatCompletionResponse struct {
	ID      string          `json:"id"`
	Model   string          `json:"model"`
	Choices []LLMChatChoice `json:"choices"`
}
