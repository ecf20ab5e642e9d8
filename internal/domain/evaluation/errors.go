package evaluation

import (
	"fmt"
	"net/http"
)

// Error is a workflow failure carrying an HTTP status and a
// machine-readable code. Handlers map it straight onto the response
// envelope.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrNotFound        = &Error{Status: http.StatusNotFound, Code: "not_found", Message: "evaluation not found"}
	ErrCycleNotFound   = &Error{Status: http.StatusNotFound, Code: "not_found", Message: "evaluation cycle not found"}
	ErrCycleClosed     = &Error{Status: http.StatusForbidden, Code: "cycle_closed", Message: "evaluation cycle is not open"}
	ErrCycleReferenced = &Error{Status: http.StatusConflict, Code: "conflict", Message: "cycle is referenced by evaluations"}

	ErrProfileIncomplete = &Error{Status: http.StatusForbidden, Code: "profile_incomplete", Message: "evaluator profile is incomplete"}
	ErrForbiddenEvaluate = &Error{Status: http.StatusForbidden, Code: "forbidden_evaluate", Message: "not allowed to evaluate this user"}

	ErrVersionConflict     = &Error{Status: http.StatusConflict, Code: "conflict", Message: "evaluation was modified concurrently"}
	ErrDuplicateEvaluation = &Error{Status: http.StatusConflict, Code: "conflict", Message: "evaluation already exists for this cycle and owner"}
)

func badRequest(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "bad_request", Message: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: fmt.Sprintf(format, args...)}
}
