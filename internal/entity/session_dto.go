package entity

import "time"

// CredentialHeader carries a per-turn credential for the generative service
const CredentialHeader = "X-API-Key"

type SubmitTurnRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type UpdateSettingsRequest struct {
	Threshold      *float64 `json:"threshold,omitempty"`
	ResetThreshold bool     `json:"reset_threshold,omitempty"`
	Credential     *string  `json:"api_key,omitempty"`
}

// SessionSettings is a runtime configuration change for a session
type SessionSettings struct {
	Threshold      *float64
	ClearThreshold bool
	Credential     *string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

type TurnDTO struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type SessionDTO struct {
	ID            string       `json:"session_id"`
	State         SessionState `json:"state"`
	History       []TurnDTO    `json:"history"`
	Threshold     float64      `json:"threshold"`
	HasCredential bool         `json:"has_credential"`
	LastError     *string      `json:"last_error,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
