package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidatorCollectsFieldErrors(t *testing.T) {
	v := NewValidator()
	v.Required("name", "  ", "name is required")
	v.Email("email", "not-an-address")
	v.UUID("organizationId", "1234")
	v.MinLen("password", "short", 8, "must be at least 8 characters")

	fields := v.Fields()
	if len(fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %+v", len(fields), fields)
	}
	if fields[0].Field != "name" || fields[3].Field != "password" {
		t.Fatalf("expected insertion order, got %+v", fields)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection with accumulated errors")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestValidatorAcceptsWellFormedInput(t *testing.T) {
	v := NewValidator()
	v.Required("name", "Operations", "name is required")
	v.Email("email", "lead@example.test")
	v.UUID("organizationId", "0c7f3a70-9a63-4e9b-b34a-0d8f6f2f9f11")
	// Empty optional references are left to Required, not double-reported.
	v.Email("email", "")
	v.UUID("departmentId", "")

	if v.HasErrors() {
		t.Fatalf("unexpected errors: %+v", v.Fields())
	}
	if v.Reject(httptest.NewRecorder(), "req-2") {
		t.Fatal("expected no rejection for a clean payload")
	}
}
