package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/platefeed/api/internal/middleware"
	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// RecipeHandler handles recipe endpoints, the membership toggles on
// recipes and the shopping list download
type RecipeHandler struct {
	recipeService       *service.RecipeService
	relationService     *service.RelationService
	shoppingListService *service.ShoppingListService
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(
	recipeService *service.RecipeService,
	relationService *service.RelationService,
	shoppingListService *service.ShoppingListService,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
	}
}

// parseBoolFlag reads a boolean query parameter; both "1" and "true"
// enable it
func parseBoolFlag(value string) bool {
	return value == "1" || value == "true"
}

// ListRecipes handles GET /v1/recipes - list recipes with optional filters.
// Anonymous requests are allowed; membership flags come back false.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	query := r.URL.Query()

	filter := &model.RecipeFilter{
		AuthorID: query.Get("author"),
		TagSlugs: query["tags"],
	}
	if parseBoolFlag(query.Get("is_favorited")) && requesterID != "" {
		filter.OnlyFavorited = true
	}
	if parseBoolFlag(query.Get("is_in_shopping_cart")) && requesterID != "" {
		filter.OnlyInCart = true
	}
	if query.Get("limit") != "" {
		if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}

	recipes, err := h.recipeService.List(r.Context(), requesterID, filter)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, recipes, nil, map[string]string{
		"self": "/v1/recipes",
	})
}

// CreateRecipe handles POST /v1/recipes - create a recipe
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateRecipeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), requesterID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, recipe, map[string]string{
		"self": "/v1/recipes/" + recipe.ID,
	})
}

// GetRecipe handles GET /v1/recipes/{recipeId} - get one recipe
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	requesterID := middleware.GetUserID(r.Context())
	recipe, err := h.recipeService.Get(r.Context(), requesterID, recipeID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, recipe, map[string]string{
		"self": "/v1/recipes/" + recipeID,
	})
}

// UpdateRecipe handles PATCH /v1/recipes/{recipeId} - partial update
func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	var req model.UpdateRecipeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	recipe, err := h.recipeService.Update(r.Context(), requesterID, recipeID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, recipe, map[string]string{
		"self": "/v1/recipes/" + recipeID,
	})
}

// ReplaceRecipe handles PUT /v1/recipes/{recipeId} - full replace.
// Every field is required; the stored tag and ingredient link sets are
// replaced wholesale.
func (h *RecipeHandler) ReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	var req model.CreateRecipeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		WriteError(w, model.NewValidationError(fieldErrors))
		return
	}

	full := model.UpdateRecipeRequest{
		Name:        &req.Name,
		Image:       &req.Image,
		Text:        &req.Text,
		CookingTime: &req.CookingTime,
		TagIDs:      &req.TagIDs,
		Ingredients: &req.Ingredients,
	}

	recipe, err := h.recipeService.Update(r.Context(), requesterID, recipeID, &full)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, recipe, map[string]string{
		"self": "/v1/recipes/" + recipeID,
	})
}

// DeleteRecipe handles DELETE /v1/recipes/{recipeId}
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	if err := h.recipeService.Delete(r.Context(), requesterID, recipeID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// AddFavorite handles POST /v1/recipes/{recipeId}/favorite
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addRecipeRelation(w, r, h.relationService.AddFavorite)
}

// RemoveFavorite handles DELETE /v1/recipes/{recipeId}/favorite
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeRecipeRelation(w, r, h.relationService.RemoveFavorite)
}

// AddToCart handles POST /v1/recipes/{recipeId}/shopping_cart
func (h *RecipeHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addRecipeRelation(w, r, h.relationService.AddToCart)
}

// RemoveFromCart handles DELETE /v1/recipes/{recipeId}/shopping_cart
func (h *RecipeHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeRecipeRelation(w, r, h.relationService.RemoveFromCart)
}

// DownloadShoppingCart handles GET /v1/recipes/download_shopping_cart -
// download the aggregated shopping list as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	list, err := h.shoppingListService.BuildList(r.Context(), requesterID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+list.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(list.Content))
}

func (h *RecipeHandler) addRecipeRelation(
	w http.ResponseWriter,
	r *http.Request,
	add func(ctx context.Context, requesterID, recipeID string) (*model.RecipeShort, error),
) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	short, err := add(r.Context(), requesterID, recipeID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, short, nil)
}

func (h *RecipeHandler) removeRecipeRelation(
	w http.ResponseWriter,
	r *http.Request,
	remove func(ctx context.Context, requesterID, recipeID string) error,
) {
	requesterID := middleware.GetUserID(r.Context())
	if requesterID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	recipeID := r.PathValue("recipeId")
	if recipeID == "" {
		WriteError(w, model.NewBadRequestError("recipe ID required"))
		return
	}

	if err := remove(r.Context(), requesterID, recipeID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
