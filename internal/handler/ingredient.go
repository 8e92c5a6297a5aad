package handler

import (
	"net/http"
	"strconv"

	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// IngredientHandler handles ingredient catalog endpoints
type IngredientHandler struct {
	catalogService *service.CatalogService
}

// NewIngredientHandler creates a new ingredient handler
func NewIngredientHandler(catalogService *service.CatalogService) *IngredientHandler {
	return &IngredientHandler{
		catalogService: catalogService,
	}
}

// ListIngredients handles GET /v1/ingredients - list ingredients, optionally
// narrowed by a case-insensitive name prefix via ?name=
func (h *IngredientHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	namePrefix := r.URL.Query().Get("name")

	limit := 0
	if r.URL.Query().Get("limit") != "" {
		if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	ingredients, err := h.catalogService.ListIngredients(r.Context(), namePrefix, limit)
	if err != nil {
		WriteError(w, model.NewInternalError("failed to list ingredients"))
		return
	}

	WriteCollection(w, http.StatusOK, ingredients, nil, map[string]string{
		"self": "/v1/ingredients",
	})
}

// GetIngredient handles GET /v1/ingredients/{ingredientId} - get one ingredient
func (h *IngredientHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	ingredientID := r.PathValue("ingredientId")
	if ingredientID == "" {
		WriteError(w, model.NewBadRequestError("ingredient ID required"))
		return
	}

	ingredient, err := h.catalogService.GetIngredient(r.Context(), ingredientID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, ingredient, map[string]string{
		"self": "/v1/ingredients/" + ingredientID,
	})
}
