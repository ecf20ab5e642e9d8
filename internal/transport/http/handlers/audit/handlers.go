package audithandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pagination := shared.ParsePagination(r, 50, 500)
	query := r.URL.Query()
	filter := audit.Filter{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		ActorID:    query.Get("actorId"),
	}
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "from must be YYYY-MM-DD or RFC3339", requestID)
			return
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := shared.ParseDate(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_filter", "to must be YYYY-MM-DD or RFC3339", requestID)
			return
		}
		// A bare date means through the end of that day.
		if len(raw) == len("2006-01-02") {
			to = to.Add(24 * time.Hour)
		}
		filter.To = to
	}

	events, total, err := h.Service.List(r.Context(), filter, pagination.Limit, pagination.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list audit events", requestID)
		return
	}
	api.Success(w, map[string]any{"items": events, "total": total}, requestID)
}
