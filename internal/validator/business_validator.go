package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// registerBusinessRules installs marketplace-specific validation tags.
func (v *Validator) registerBusinessRules() {
	// nysc_year: a plausible NYSC service year (scheme started 1973, allow
	// one year ahead for incoming batches)
	_ = v.validate.RegisterValidation("nysc_year", func(fl validator.FieldLevel) bool {
		year := int(fl.Field().Int())
		return year >= 1973 && year <= time.Now().Year()+1
	})

	// future_session: session must be scheduled ahead of now
	_ = v.validate.RegisterValidation("future_session", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return t.After(time.Now())
	})
}

// ValidateReviewDecision checks the operator input for a review decision.
// Reasons/notes are mandatory for reject and revision requests and must be
// validated before any write happens.
func (v *Validator) ValidateReviewDecision(decision string, reason string) ValidationErrors {
	switch decision {
	case "reject":
		if reason == "" {
			return ValidationErrors{{Field: "reason", Message: "is required when rejecting an application", Rule: "required"}}
		}
	case "request_revision":
		if reason == "" {
			return ValidationErrors{{Field: "notes", Message: "are required when requesting a revision", Rule: "required"}}
		}
	}
	return nil
}
