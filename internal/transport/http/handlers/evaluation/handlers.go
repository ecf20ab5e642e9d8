package evaluationhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/evaluation"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) record(r *http.Request, action string, ev *evaluation.Evaluation) {
	if h.Audit == nil || ev == nil {
		return
	}
	user, _ := middleware.GetUser(r.Context())
	h.Audit.Record(r.Context(), user.UserID, action, "evaluation", ev.ID,
		middleware.GetRequestID(r.Context()), nil, map[string]any{"status": ev.Status, "version": ev.Version})
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cycles", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListCycles)
		r.With(middleware.RequireAuth).Get("/{cycleID}", h.handleGetCycle)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Post("/", h.handleCreateCycle)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Put("/{cycleID}", h.handleUpdateCycle)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)).Delete("/{cycleID}", h.handleDeleteCycle)
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/eligible", h.handleListEligible)
		r.Get("/{evaluationID}", h.handleGet)
		r.Patch("/{evaluationID}", h.handleUpdate)
		r.Delete("/{evaluationID}", h.handleDelete)
		r.Post("/{evaluationID}/submit", h.handleSubmit)
		r.Post("/{evaluationID}/approve-manager", h.handleApproveManager)
		r.Post("/{evaluationID}/approve-md", h.handleApproveMD)
		r.Post("/{evaluationID}/reject", h.handleReject)
		r.Get("/{evaluationID}/pdf", h.handleExportPDF)
	})
}

// signedRequest carries a signature-bearing transition payload.
type signedRequest struct {
	Signature string `json:"signature"`
	Comment   string `json:"comment"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var input evaluation.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	ev, err := h.Service.Create(r.Context(), user, input)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	h.record(r, "evaluation.create", ev)
	api.Created(w, ev, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	ev, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, ev, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var patch evaluation.UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	ev, err := h.Service.Update(r.Context(), user, chi.URLParam(r, "evaluationID"), patch)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, ev, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Delete(r.Context(), user, chi.URLParam(r, "evaluationID")); err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	pagination := shared.ParsePagination(r, 50, 200)
	filter := evaluation.ListFilter{
		CycleID: r.URL.Query().Get("cycleId"),
		OwnerID: r.URL.Query().Get("ownerId"),
		Status:  r.URL.Query().Get("status"),
		Limit:   pagination.Limit,
		Offset:  pagination.Offset,
	}

	evaluations, total, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": evaluations, "total": total}, requestID)
}

func (h *Handler) handleListEligible(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	query := r.URL.Query()
	opts := evaluation.EligibleOptions{
		IncludeSelf:  query.Get("includeSelf") == "true",
		IncludeTaken: query.Get("includeTaken") == "true",
	}

	users, err := h.Service.ListEligibleEvaluatees(r.Context(), query.Get("cycleId"), user.UserID, opts)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": users, "total": len(users)}, requestID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "evaluation.submit", h.Service.Submit)
}

func (h *Handler) handleApproveManager(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "evaluation.approve_manager", h.Service.ApproveByManager)
}

func (h *Handler) handleApproveMD(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "evaluation.approve_md", h.Service.ApproveByMD)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, actor auth.UserContext, evaluationID, signature, comment string) (*evaluation.Evaluation, error)) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload signedRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	ev, err := apply(r.Context(), user, chi.URLParam(r, "evaluationID"), payload.Signature, payload.Comment)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	h.record(r, action, ev)
	api.Success(w, ev, requestID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload signedRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	ev, err := h.Service.Reject(r.Context(), user, chi.URLParam(r, "evaluationID"), payload.Comment)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	h.record(r, "evaluation.reject", ev)
	api.Success(w, ev, requestID)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	pdfBytes, err := h.Service.ExportPDF(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var input evaluation.CycleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	cycle, err := h.Service.CreateCycle(r.Context(), input)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Created(w, cycle, requestID)
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	cycle, err := h.Service.GetCycleByID(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, cycle, requestID)
}

func (h *Handler) handleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var input evaluation.CycleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	cycle, err := h.Service.UpdateCycle(r.Context(), chi.URLParam(r, "cycleID"), input)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, cycle, requestID)
}

func (h *Handler) handleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeleteCycle(r.Context(), chi.URLParam(r, "cycleID")); err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	pagination := shared.ParsePagination(r, 50, 200)
	query := r.URL.Query()
	cycles, total, err := h.Service.ListCycles(r.Context(), query.Get("sort"), query.Get("order"), pagination.Limit, pagination.Offset)
	if err != nil {
		writeWorkflowError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": cycles, "total": total}, requestID)
}

func writeWorkflowError(w http.ResponseWriter, err error, requestID string) {
	var wErr *evaluation.Error
	if errors.As(err, &wErr) {
		api.Fail(w, wErr.Status, wErr.Code, wErr.Message, requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
}
