package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type SessionState string

// Session state represents where the conversation is within a single turn
const (
	SessionStateIdle          SessionState = "IDLE"           // Session created, not started
	SessionStateAwaitingInput SessionState = "AWAITING_INPUT" // Ready for the next user turn
	SessionStateMatching      SessionState = "MATCHING"       // Scoring the turn against the corpus
	SessionStateFallback      SessionState = "FALLBACK"       // Waiting for the generative service
	SessionStateError         SessionState = "ERROR"          // Last turn failed, recoverable
)

type AnswerSource string

const (
	AnswerSourceCorpus   AnswerSource = "corpus"
	AnswerSourceFallback AnswerSource = "fallback"
)

// Session holds the conversation of one UI client. It is not persisted across restarts.
type Session struct {
	ID         string
	State      SessionState
	History    []Turn
	Threshold  *float64 // overrides the configured default when set
	Credential string   // secret for the generative service, never exposed
	LastError  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSession creates an idle session with an empty history
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		State:     SessionStateIdle,
		History:   []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate it without touching shared state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	clone := *s
	clone.History = make([]Turn, len(s.History))
	copy(clone.History, s.History)

	if s.Threshold != nil {
		threshold := *s.Threshold
		clone.Threshold = &threshold
	}
	if s.LastError != nil {
		lastErr := *s.LastError
		clone.LastError = &lastErr
	}

	return &clone
}

// Append adds a turn to the end of the history
func (s *Session) Append(role Role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

// HasCredential reports whether a credential is stored on the session
func (s *Session) HasCredential() bool {
	return s.Credential != ""
}

// TurnInput is a single user turn together with its runtime overrides
type TurnInput struct {
	Text       string
	Threshold  *float64
	Credential string
}

// TurnResult is what the orchestrator produced for a user turn
type TurnResult struct {
	Answer          string       `json:"answer"`
	Source          AnswerSource `json:"source"`
	Score           float64      `json:"score"`
	Threshold       float64      `json:"threshold"`
	MatchedQuestion *string      `json:"matched_question,omitempty"`
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
)

func (rf *ResultFormat) Validate() error {
	switch *rf {
	case FormatMarkdown, FormatDOCX, FormatPDF:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", *rf)
	}
}

// Transcript is an exported copy of a session's conversation
type Transcript struct {
	SessionID  string
	History    []Turn
	ExportedAt time.Time
}
