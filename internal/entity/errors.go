package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInProgress  = errors.New("another turn is being processed for this session")

	// Orchestration errors
	ErrMissingCredential = errors.New("credential for the generative service is missing")
	ErrFallbackService   = errors.New("generative service failure")

	// Corpus errors
	ErrEmptyCorpus   = errors.New("corpus is empty")
	ErrInvalidCorpus = errors.New("invalid corpus entry")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// FailureKind classifies why the generative service call failed
type FailureKind string

const (
	FailureAuth        FailureKind = "auth"
	FailureRateLimit   FailureKind = "rate_limit"
	FailureNetwork     FailureKind = "network"
	FailureTimeout     FailureKind = "timeout"
	FailureMalformed   FailureKind = "malformed"
	FailureUnavailable FailureKind = "unavailable"
	FailureUnknown     FailureKind = "unknown"
)

// FallbackError is the failure side of a generative service call.
// It matches ErrFallbackService with errors.Is and unwraps to the transport cause.
type FallbackError struct {
	Kind   FailureKind
	Detail string
	Err    error
}

func NewFallbackError(kind FailureKind, detail string, cause error) *FallbackError {
	return &FallbackError{Kind: kind, Detail: detail, Err: cause}
}

func (e *FallbackError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (%s)", ErrFallbackService.Error(), e.Kind)
	}
	return fmt.Sprintf("%s (%s): %s", ErrFallbackService.Error(), e.Kind, e.Detail)
}

func (e *FallbackError) Unwrap() error {
	return e.Err
}

func (e *FallbackError) Is(target error) bool {
	return target == ErrFallbackService
}
