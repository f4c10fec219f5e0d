package render

import (
	"fmt"
	"strconv"

	"github.com/futig/faq-assistant/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! Ask me anything about Thoughtful AI's agents.

Questions I know are answered right away. Anything else goes to a language model, so set your OpenAI key first with /key.`

	MsgHelp = `🤖 Bot commands:

/start - Start a conversation
/help - Show this help
/reset - Clear the chat history
/threshold <number> - Set how close a question must be to a known one (/threshold default to restore)
/key <api key> - Set the OpenAI API key used for other questions
/export - Download the conversation
/end - End the conversation`

	// Settings
	MsgChatCleared      = `🧹 Chat cleared.`
	MsgSessionEnded     = `👋 Conversation ended. Send any message to start a new one.`
	MsgThresholdCurrent = `🎯 Current match threshold: %s`
	MsgThresholdSet     = `🎯 Match threshold set to %s`
	MsgThresholdUsage   = `Usage: /threshold <number>, for example /threshold 0.75`
	MsgKeySaved         = `🔑 API key saved. I deleted your message so the key does not stay in the chat.`
	MsgKeyUsage         = `Usage: /key <your OpenAI API key>`

	// Export
	MsgChooseFormat    = `📄 Choose a format:`
	MsgEmptyTranscript = `Nothing to export yet.`

	// Errors
	ErrGeneric            = `❌ Something went wrong. Try again or press /start`
	ErrUnknownCommand     = `❌ Unknown command. See /help`
	ErrSessionNotFound    = `❌ Conversation not found. Start a new one with /start`
	ErrMissingKey         = `🔑 An OpenAI API key is required. Set it with /key <api key>`
	ErrTurnInProgress     = `⏳ Still answering your previous message, please wait.`
	ErrInvalidInput       = `❌ Invalid input: %s`
	ErrAuth               = `❌ The language model rejected the API key. Check it and set it again with /key.`
	ErrQuotaExceeded      = `❌ The language model is rate limiting requests. Wait a bit and try again.`
	ErrTimeout            = `❌ The language model took too long to answer. Try again.`
	ErrNetworkIssue       = `❌ Could not reach the language model. Try again later.`
	ErrServiceUnavailable = `❌ The language model is temporarily unavailable. Try again in a few minutes.`
	ErrMalformed          = `❌ The language model returned an unexpected response. Try rephrasing.`
	ErrTextOnly           = `I can only read text messages.`
)

// RenderThreshold formats a threshold for display
func RenderThreshold(threshold float64) string {
	return strconv.FormatFloat(threshold, 'g', -1, 64)
}

// RenderFallbackError picks the user message for a failed generative call
func RenderFallbackError(err *entity.FallbackError) string {
	switch err.Kind {
	case entity.FailureAuth:
		return ErrAuth
	case entity.FailureRateLimit:
		return ErrQuotaExceeded
	case entity.FailureTimeout:
		return ErrTimeout
	case entity.FailureNetwork:
		return ErrNetworkIssue
	case entity.FailureUnavailable:
		return ErrServiceUnavailable
	case entity.FailureMalformed:
		return ErrMalformed
	default:
		return ErrGeneric
	}
}

// RenderInvalidInput formats a validation problem
func RenderInvalidInput(reason string) string {
	return fmt.Sprintf(ErrInvalidInput, reason)
}
