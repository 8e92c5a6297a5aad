package handler

import (
	"net/http"
	"strconv"

	"github.com/platefeed/api/internal/middleware"
	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// UserHandler handles the user directory and subscription endpoints
type UserHandler struct {
	userService     *service.UserService
	relationService *service.RelationService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, relationService *service.RelationService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		relationService: relationService,
	}
}

// ListUsers handles GET /v1/users - list user profiles
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())

	limit := 0
	if r.URL.Query().Get("limit") != "" {
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	users, err := h.userService.List(r.Context(), requesterID, limit)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to list users"))
		return
	}

	WriteCollection(w, http.StatusOK, users, nil, map[string]string{
		"self": "/v1/users",
	})
}

// GetUser handles GET /v1/users/{userId} - get one user profile
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	profile, err := h.userService.Get(r.Context(), requesterID, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, profile, map[string]string{
		"self": "/v1/users/" + userID,
	})
}

// UpdateProfile handles PATCH /v1/users/me - update own profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		WriteError(w, model.NewValidationError(fieldErrors))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), requesterID, req.FirstName, req.LastName, req.Bio)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self": "/v1/users/me",
	})
}

// Subscribe handles POST /v1/users/{userId}/subscribe
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	authorID := r.PathValue("userId")
	if authorID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	author, err := h.relationService.Subscribe(r.Context(), requesterID, authorID, recipesLimit(r))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, author, nil)
}

// Unsubscribe handles DELETE /v1/users/{userId}/subscribe
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	authorID := r.PathValue("userId")
	if authorID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	if err := h.relationService.Unsubscribe(r.Context(), requesterID, authorID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Subscriptions handles GET /v1/users/subscriptions - list followed authors
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	authors, err := h.relationService.Subscriptions(r.Context(), requesterID, limit, recipesLimit(r))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, authors, nil, map[string]string{
		"self": "/v1/users/subscriptions",
	})
}

// recipesLimit reads the optional ?recipes_limit= query parameter.
// 0 means no limit.
func recipesLimit(r *http.Request) int {
	raw := r.URL.Query().Get("recipes_limit")
	if raw == "" {
		return 0
	}
	if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 100 {
		return l
	}
	return 0
}
