package directoryhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/directory"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	elevated := middleware.RequireRole(auth.RoleAdmin, auth.RoleHR)

	r.Route("/organizations", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListOrganizations)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreateOrganization)
	})

	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDepartments)
		r.With(middleware.RequireAuth).Get("/{departmentID}", h.handleGetDepartment)
		r.With(elevated).Post("/", h.handleCreateDepartment)
		r.With(elevated).Put("/{departmentID}", h.handleUpdateDepartment)
		r.With(elevated).Delete("/{departmentID}", h.handleDeleteDepartment)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListUsers)
		r.Get("/{userID}", h.handleGetUser)
		r.Get("/{userID}/profile", h.handleGetProfile)
		r.Get("/{userID}/memberships", h.handleListMemberships)
		r.Get("/{userID}/position-changes", h.handleListPositionChanges)
		r.With(elevated).Post("/", h.handleCreateUser)
		r.With(elevated).Put("/{userID}", h.handleUpdateUser)
		r.With(elevated).Delete("/{userID}", h.handleDeleteUser)
		r.With(elevated).Post("/{userID}/restore", h.handleRestoreUser)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Delete("/{userID}/purge", h.handlePurgeUser)
		r.With(elevated).Post("/{userID}/memberships", h.handleAssignMembership)
		r.With(elevated).Post("/{userID}/primary-membership", h.handleSetPrimaryMembership)
		r.With(elevated).Post("/{userID}/position", h.handleChangePosition)
	})

	r.With(elevated).Delete("/memberships/{membershipID}", h.handleEndMembership)
}

type organizationRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type departmentRequest struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Code           string `json:"code"`
}

type userRequest struct {
	OrganizationID string `json:"organizationId"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	Password       string `json:"password"`
	Role           string `json:"role"`
}

type membershipRequest struct {
	DepartmentID string `json:"departmentId"`
	Rank         string `json:"rank"`
	Title        string `json:"title"`
	MakePrimary  bool   `json:"makePrimary"`
}

type positionChangeRequest struct {
	DepartmentID string `json:"departmentId"`
	Rank         string `json:"rank"`
	Title        string `json:"title"`
	Reason       string `json:"reason"`
	MakePrimary  bool   `json:"makePrimary"`
}

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload organizationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("code", payload.Code, "code is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateOrganization(r.Context(), payload.Name, payload.Code)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	orgs, err := h.Service.ListOrganizations(r.Context())
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": orgs}, requestID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("organizationId", payload.OrganizationID, "organizationId is required")
	v.UUID("organizationId", payload.OrganizationID)
	v.Required("name", payload.Name, "name is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateDepartment(r.Context(), payload.OrganizationID, payload.Name, payload.Code)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	department, err := h.Service.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, department, requestID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pagination := shared.ParsePagination(r, 50, 200)
	departments, err := h.Service.ListDepartments(r.Context(), r.URL.Query().Get("organizationId"), pagination.Limit, pagination.Offset)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": departments}, requestID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if err := h.Service.UpdateDepartment(r.Context(), chi.URLParam(r, "departmentID"), payload.Name, payload.Code); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.DeleteDepartment(r.Context(), chi.URLParam(r, "departmentID")); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Email("email", payload.Email)
	v.Required("fullName", payload.FullName, "fullName is required")
	v.MinLen("password", payload.Password, 8, "must be at least 8 characters")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateUser(r.Context(), payload.OrganizationID, payload.Email, payload.FullName, payload.Password, payload.Role)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	includeDeleted := r.URL.Query().Get("includeDeleted") == "true" && user.Role.Elevated()
	found, err := h.Service.GetUser(r.Context(), chi.URLParam(r, "userID"), includeDeleted)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, found, requestID)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	profile, err := h.Service.PrimaryProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{
		"userId":              profile.UserID,
		"email":               profile.Email,
		"fullName":            profile.FullName,
		"role":                profile.Role,
		"primaryDepartmentId": profile.PrimaryDepartmentID,
		"primaryRank":         profile.PrimaryRank.String(),
		"memberships":         profile.Memberships,
		"complete":            profile.Complete(),
	}, requestID)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	pagination := shared.ParsePagination(r, 50, 200)
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true" && user.Role.Elevated()
	users, total, err := h.Service.ListUsers(r.Context(), r.URL.Query().Get("organizationId"), includeDeleted, pagination.Limit, pagination.Offset)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": users, "total": total}, requestID)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if err := h.Service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), payload.FullName, payload.Role); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.SoftDeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

func (h *Handler) handleRestoreUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.RestoreUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "restored"}, requestID)
}

func (h *Handler) handlePurgeUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.PurgeUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "purged"}, requestID)
}

func (h *Handler) handleAssignMembership(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	id, err := h.Service.AssignMembership(r.Context(), chi.URLParam(r, "userID"), payload.DepartmentID, payload.Rank, payload.Title, payload.MakePrimary)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListMemberships(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	memberships, err := h.Service.ActiveMemberships(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": memberships}, requestID)
}

func (h *Handler) handleEndMembership(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Service.EndMembership(r.Context(), chi.URLParam(r, "membershipID")); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "ended"}, requestID)
}

func (h *Handler) handleSetPrimaryMembership(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		MembershipID string `json:"membershipId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if err := h.Service.SetPrimaryMembership(r.Context(), chi.URLParam(r, "userID"), payload.MembershipID); err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func (h *Handler) handleChangePosition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload positionChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	id, err := h.Service.ChangePosition(r.Context(), actor.UserID, chi.URLParam(r, "userID"), payload.DepartmentID, payload.Rank, payload.Title, payload.Reason, payload.MakePrimary)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListPositionChanges(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pagination := shared.ParsePagination(r, 50, 200)
	changes, err := h.Service.ListPositionChanges(r.Context(), chi.URLParam(r, "userID"), pagination.Limit, pagination.Offset)
	if err != nil {
		writeDirectoryError(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"items": changes}, requestID)
}

func writeDirectoryError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, directory.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "conflict", "email already in use", requestID)
	case errors.Is(err, directory.ErrDuplicateMD):
		api.Fail(w, http.StatusConflict, "conflict", "department already has an MD", requestID)
	case errors.Is(err, directory.ErrDepartmentInUse):
		api.Fail(w, http.StatusConflict, "conflict", "department has active memberships", requestID)
	case errors.Is(err, directory.ErrMembershipEnded):
		api.Fail(w, http.StatusConflict, "conflict", "membership has ended", requestID)
	case errors.Is(err, directory.ErrNotPrimaryCapable):
		api.Fail(w, http.StatusBadRequest, "bad_request", "membership cannot be primary", requestID)
	case errors.Is(err, directory.ErrUserDeleted):
		api.Fail(w, http.StatusConflict, "conflict", "user is deleted", requestID)
	case errors.Is(err, directory.ErrInvalidRole):
		api.Fail(w, http.StatusBadRequest, "bad_request", "unknown role", requestID)
	case errors.Is(err, directory.ErrInvalidRank):
		api.Fail(w, http.StatusBadRequest, "bad_request", "unknown rank", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
	}
}
