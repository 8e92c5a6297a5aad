package handler

import (
	"net/http"
	"strconv"

	"github.com/platefeed/api/internal/middleware"
	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// AdminHandler handles admin user management endpoints
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// UpdateRoleRequest is the body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// ListUsers handles GET /v1/admin/users - list accounts with role and email
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if r.URL.Query().Get("limit") != "" {
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	users, err := h.adminService.ListUsers(r.Context(), limit)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to list users"))
		return
	}

	WriteCollection(w, http.StatusOK, users, nil, map[string]string{
		"self": "/v1/admin/users",
	})
}

// UpdateRole handles PATCH /v1/admin/users/{userId}/role
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	var req UpdateRoleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.adminService.SetUserRole(r.Context(), adminID, userID, model.UserRole(req.Role)); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteUser handles DELETE /v1/admin/users/{userId}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.adminService.DeleteUser(r.Context(), adminID, userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
