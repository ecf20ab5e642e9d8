package shared

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"hrdesk/internal/transport/http/api"
)

// FieldError pinpoints one rejected payload field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator accumulates field errors across a payload so the caller gets
// a single response naming everything that is wrong, not just the first
// failure. A nil Validator is a no-op.
type Validator struct {
	errs []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if v == nil || strings.TrimSpace(reason) == "" {
		return
	}
	v.errs = append(v.errs, FieldError{Field: strings.TrimSpace(field), Reason: strings.TrimSpace(reason)})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Email rejects anything net/mail cannot parse. Empty values are left to
// Required so the two checks do not double-report.
func (v *Validator) Email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "must be a valid email address")
	}
}

// UUID rejects non-empty values that are not well-formed UUIDs. Entity
// references arrive as path or payload strings; catching a malformed one
// here yields a field error instead of a store-level cast failure.
func (v *Validator) UUID(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, err := uuid.Parse(value); err != nil {
		v.Add(field, "must be a valid UUID")
	}
}

func (v *Validator) MinLen(field, value string, n int, reason string) {
	if len(value) < n {
		v.Add(field, reason)
	}
}

func (v *Validator) HasErrors() bool {
	return v != nil && len(v.errs) > 0
}

// Fields returns the accumulated errors in the order they were added.
func (v *Validator) Fields() []FieldError {
	if v == nil || len(v.errs) == 0 {
		return nil
	}
	out := make([]FieldError, len(v.errs))
	copy(out, v.errs)
	return out
}

// Reject writes a 400 with every field error and reports whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasErrors() {
		return false
	}
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": v.Fields()},
		requestID,
	)
	return true
}
