package handler

import (
	"net/http"

	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// TagHandler handles tag catalog endpoints
type TagHandler struct {
	catalogService *service.CatalogService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(catalogService *service.CatalogService) *TagHandler {
	return &TagHandler{
		catalogService: catalogService,
	}
}

// ListTags handles GET /v1/tags - list all tags
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalogService.ListTags(r.Context())
	if err != nil {
		WriteError(w, model.NewInternalError("failed to list tags"))
		return
	}

	WriteCollection(w, http.StatusOK, tags, nil, map[string]string{
		"self": "/v1/tags",
	})
}

// GetTag handles GET /v1/tags/{tagId} - get one tag
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagId")
	if tagID == "" {
		WriteError(w, model.NewBadRequestError("tag ID required"))
		return
	}

	tag, err := h.catalogService.GetTag(r.Context(), tagID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, tag, map[string]string{
		"self": "/v1/tags/" + tagID,
	})
}
