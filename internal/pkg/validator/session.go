package validator

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/futig/faq-assistant/internal/config"
	"github.com/futig/faq-assistant/internal/entity"
)

// Validator checks user supplied turn text and settings
type Validator struct {
	cfg config.InputConfig
}

func NewValidator(cfg config.InputConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateThreshold rejects NaN and infinities
func (v *Validator) ValidateThreshold(threshold *float64) error {
	if threshold == nil {
		return nil
	}
	if math.IsNaN(*threshold) || math.IsInf(*threshold, 0) {
		return fmt.Errorf("%w: threshold must be a finite number", entity.ErrInvalidParameter)
	}
	return nil
}

// ValidateSubmitTurn validates a user turn. Empty text is allowed.
func (v *Validator) ValidateSubmitTurn(req *entity.SubmitTurnRequest) error {
	if n := utf8.RuneCountInString(req.Text); n > v.cfg.MaxTextLength {
		return fmt.Errorf("%w: text is %d characters (max %d)", entity.ErrInvalidParameter, n, v.cfg.MaxTextLength)
	}

	return v.ValidateThreshold(req.Threshold)
}

// ValidateUpdateSettings validates a settings change
func (v *Validator) ValidateUpdateSettings(req *entity.UpdateSettingsRequest) error {
	if req.Threshold == nil && req.Credential == nil && !req.ResetThreshold {
		return fmt.Errorf("%w: threshold, reset_threshold or api_key", entity.ErrMissingField)
	}

	if req.Threshold != nil && req.ResetThreshold {
		return fmt.Errorf("%w: threshold and reset_threshold are mutually exclusive", entity.ErrInvalidParameter)
	}

	return v.ValidateThreshold(req.Threshold)
}

// ValidateFormat validates a transcript export format
func (v *Validator) ValidateFormat(format entity.ResultFormat) error {
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidFormat, err)
	}
	return nil
}
