package contacthandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/contact"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *contact.Service
}

func NewHandler(service *contact.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Submission is open to unauthenticated visitors; reading is HR-only.
	r.Post("/contact", h.handleSubmit)
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/contact", h.handleList)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var input contact.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	msg, err := h.Service.Submit(r.Context(), input)
	if err != nil {
		var vErr *contact.ValidationError
		if errors.As(err, &vErr) {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				map[string]any{"fields": []map[string]string{{"field": vErr.Field, "reason": "missing or invalid"}}}, requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to submit message", requestID)
		return
	}
	api.Created(w, msg, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pagination := shared.ParsePagination(r, 50, 200)
	messages, total, err := h.Service.List(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list messages", requestID)
		return
	}
	api.Success(w, map[string]any{"items": messages, "total": total}, requestID)
}
