package service

import (
	"context"

	"github.com/platefeed/api/internal/model"
)

// RecipeRepository defines the interface for recipe aggregate storage
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe, tagIDs []string, lines []model.IngredientLine) error
	Update(ctx context.Context, recipe *model.Recipe, tagIDs *[]string, lines *[]model.IngredientLine) error
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	List(ctx context.Context, filter *model.RecipeFilter) ([]*model.Recipe, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Recipe, error)
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	Delete(ctx context.Context, id string) error
	GetTags(ctx context.Context, recipeID string) ([]*model.Tag, error)
	GetIngredientLines(ctx context.Context, recipeID string) ([]*model.RecipeIngredient, error)
}

// TagReader is the tag catalog access the recipe service needs
type TagReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]*model.Tag, error)
}

// IngredientReader is the ingredient catalog access the recipe service needs
type IngredientReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]*model.Ingredient, error)
}

// RecipeService handles the recipe aggregate: the recipe row, its tag
// links and its ingredient lines are written together or not at all.
type RecipeService struct {
	recipeRepo     RecipeRepository
	tagRepo        TagReader
	ingredientRepo IngredientReader
	relationRepo   RelationRepository
	userRepo       UserReader
}

// RecipeServiceConfig holds configuration for the recipe service
type RecipeServiceConfig struct {
	RecipeRepo     RecipeRepository
	TagRepo        TagReader
	IngredientRepo IngredientReader
	RelationRepo   RelationRepository
	UserRepo       UserReader
}

// NewRecipeService creates a new recipe service
func NewRecipeService(cfg RecipeServiceConfig) *RecipeService {
	return &RecipeService{
		recipeRepo:     cfg.RecipeRepo,
		tagRepo:        cfg.TagRepo,
		ingredientRepo: cfg.IngredientRepo,
		relationRepo:   cfg.RelationRepo,
		userRepo:       cfg.UserRepo,
	}
}

// Create creates a recipe authored by the requester
func (s *RecipeService) Create(ctx context.Context, requesterID string, req *model.CreateRecipeRequest) (*model.RecipeDetail, error) {
	if errors := req.Validate(); len(errors) > 0 {
		return nil, model.NewValidationError(errors)
	}

	if err := s.checkTagsExist(ctx, req.TagIDs); err != nil {
		return nil, err
	}
	if err := s.checkIngredientsExist(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		AuthorID:    requesterID,
		Name:        req.Name,
		Image:       req.Image,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	if err := s.recipeRepo.Create(ctx, recipe, req.TagIDs, req.Ingredients); err != nil {
		return nil, err
	}

	return s.Get(ctx, requesterID, recipe.ID)
}

// Update applies a partial update to a recipe. Only the author or an
// admin may update; either way the stored author becomes the requester.
// A provided tag or ingredient list fully replaces the stored links.
func (s *RecipeService) Update(ctx context.Context, requesterID, recipeID string, req *model.UpdateRecipeRequest) (*model.RecipeDetail, error) {
	if errors := req.Validate(); len(errors) > 0 {
		return nil, model.NewValidationError(errors)
	}

	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	if err := s.checkCanModify(ctx, requesterID, recipe); err != nil {
		return nil, err
	}

	if req.TagIDs != nil {
		if err := s.checkTagsExist(ctx, *req.TagIDs); err != nil {
			return nil, err
		}
	}
	if req.Ingredients != nil {
		if err := s.checkIngredientsExist(ctx, *req.Ingredients); err != nil {
			return nil, err
		}
	}

	// The requester takes over authorship on every update
	recipe.AuthorID = requesterID
	if req.Name != nil {
		recipe.Name = *req.Name
	}
	if req.Image != nil {
		recipe.Image = *req.Image
	}
	if req.Text != nil {
		recipe.Text = *req.Text
	}
	if req.CookingTime != nil {
		recipe.CookingTime = *req.CookingTime
	}

	if err := s.recipeRepo.Update(ctx, recipe, req.TagIDs, req.Ingredients); err != nil {
		return nil, err
	}

	return s.Get(ctx, requesterID, recipe.ID)
}

// Delete removes a recipe. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, requesterID, recipeID string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return ErrRecipeNotFound
	}

	if err := s.checkCanModify(ctx, requesterID, recipe); err != nil {
		return err
	}

	return s.recipeRepo.Delete(ctx, recipeID)
}

// Get retrieves a fully resolved recipe. requesterID may be empty:
// anonymous requesters see both membership flags false.
func (s *RecipeService) Get(ctx context.Context, requesterID, recipeID string) (*model.RecipeDetail, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	details, err := s.resolve(ctx, requesterID, []*model.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// List retrieves recipes matching the filter, fully resolved for the
// requester
func (s *RecipeService) List(ctx context.Context, requesterID string, filter *model.RecipeFilter) ([]*model.RecipeDetail, error) {
	if filter == nil {
		filter = &model.RecipeFilter{}
	}
	filter.RequesterID = requesterID

	recipes, err := s.recipeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, requesterID, recipes)
}

// resolve joins recipes with their authors, tags, ingredient lines and
// the requester's membership flags
func (s *RecipeService) resolve(ctx context.Context, requesterID string, recipes []*model.Recipe) ([]*model.RecipeDetail, error) {
	recipeIDs := make([]string, 0, len(recipes))
	for _, recipe := range recipes {
		recipeIDs = append(recipeIDs, recipe.ID)
	}

	favorited, err := s.relationRepo.TargetFlags(ctx, model.RelationFavorite, requesterID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.relationRepo.TargetFlags(ctx, model.RelationCart, requesterID, recipeIDs)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]*model.UserPublic)
	details := make([]*model.RecipeDetail, 0, len(recipes))
	for _, recipe := range recipes {
		author, ok := authors[recipe.AuthorID]
		if !ok {
			user, err := s.userRepo.GetByID(ctx, recipe.AuthorID)
			if err != nil {
				return nil, err
			}
			if user != nil {
				subscribed := false
				if requesterID != "" && requesterID != user.ID {
					membership, err := s.relationRepo.Get(ctx, model.RelationSubscription, requesterID, user.ID)
					if err != nil {
						return nil, err
					}
					subscribed = membership != nil
				}
				author = user.ToPublic(subscribed)
			}
			authors[recipe.AuthorID] = author
		}

		tags, err := s.recipeRepo.GetTags(ctx, recipe.ID)
		if err != nil {
			return nil, err
		}
		lines, err := s.recipeRepo.GetIngredientLines(ctx, recipe.ID)
		if err != nil {
			return nil, err
		}

		details = append(details, &model.RecipeDetail{
			Recipe:           *recipe,
			Author:           author,
			Tags:             tags,
			Ingredients:      lines,
			IsFavorited:      favorited[recipe.ID],
			IsInShoppingCart: inCart[recipe.ID],
		})
	}
	return details, nil
}

// checkCanModify allows the recipe author and admins through
func (s *RecipeService) checkCanModify(ctx context.Context, requesterID string, recipe *model.Recipe) error {
	if recipe.AuthorID == requesterID {
		return nil
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if requester != nil && requester.IsAdmin() {
		return nil
	}
	return ErrNotRecipeAuthor
}

func (s *RecipeService) checkTagsExist(ctx context.Context, tagIDs []string) error {
	tags, err := s.tagRepo.GetByIDs(ctx, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return ErrTagNotFound
	}
	return nil
}

func (s *RecipeService) checkIngredientsExist(ctx context.Context, lines []model.IngredientLine) error {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}

	ingredients, err := s.ingredientRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(ingredients) != len(ids) {
		return ErrIngredientNotFound
	}
	return nil
}
