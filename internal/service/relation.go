package service

import (
	"context"
	"errors"

	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"
)

// RelationRepository defines the interface for membership row storage
type RelationRepository interface {
	Create(ctx context.Context, kind model.RelationKind, userID, targetID string) (*model.Membership, error)
	Get(ctx context.Context, kind model.RelationKind, userID, targetID string) (*model.Membership, error)
	Delete(ctx context.Context, kind model.RelationKind, userID, targetID string) error
	ListTargetIDs(ctx context.Context, kind model.RelationKind, userID string) ([]string, error)
	TargetFlags(ctx context.Context, kind model.RelationKind, userID string, targetIDs []string) (map[string]bool, error)
}

// RecipeReader is the recipe access the relation service needs
type RecipeReader interface {
	GetByID(ctx context.Context, id string) (*model.Recipe, error)
	ListByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Recipe, error)
	CountByAuthor(ctx context.Context, authorID string) (int, error)
}

// UserReader is the user access the relation service needs
type UserReader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RelationService runs the membership toggles: favorites, shopping cart
// items and subscriptions. A toggle is deliberately not idempotent:
// adding a relation the user already holds and removing one they do not
// hold are both errors, so clients always learn the true state
// transition.
type RelationService struct {
	relationRepo RelationRepository
	recipeRepo   RecipeReader
	userRepo     UserReader
}

// RelationServiceConfig holds configuration for the relation service
type RelationServiceConfig struct {
	RelationRepo RelationRepository
	RecipeRepo   RecipeReader
	UserRepo     UserReader
}

// NewRelationService creates a new relation service
func NewRelationService(cfg RelationServiceConfig) *RelationService {
	return &RelationService{
		relationRepo: cfg.RelationRepo,
		recipeRepo:   cfg.RecipeRepo,
		userRepo:     cfg.UserRepo,
	}
}

// relationErrors maps each relation kind to its duplicate-add and
// absent-remove errors
var relationErrors = map[model.RelationKind]struct {
	alreadyExists error
	notAMember    error
}{
	model.RelationFavorite:     {ErrAlreadyFavorited, ErrNotFavorited},
	model.RelationCart:         {ErrAlreadyInCart, ErrNotInCart},
	model.RelationSubscription: {ErrAlreadySubscribed, ErrNotSubscribed},
}

// AddFavorite adds a recipe to the requester's favorites
func (s *RelationService) AddFavorite(ctx context.Context, requesterID, recipeID string) (*model.RecipeShort, error) {
	return s.addRecipeRelation(ctx, model.RelationFavorite, requesterID, recipeID)
}

// RemoveFavorite removes a recipe from the requester's favorites
func (s *RelationService) RemoveFavorite(ctx context.Context, requesterID, recipeID string) error {
	return s.removeRecipeRelation(ctx, model.RelationFavorite, requesterID, recipeID)
}

// AddToCart adds a recipe to the requester's shopping cart
func (s *RelationService) AddToCart(ctx context.Context, requesterID, recipeID string) (*model.RecipeShort, error) {
	return s.addRecipeRelation(ctx, model.RelationCart, requesterID, recipeID)
}

// RemoveFromCart removes a recipe from the requester's shopping cart
func (s *RelationService) RemoveFromCart(ctx context.Context, requesterID, recipeID string) error {
	return s.removeRecipeRelation(ctx, model.RelationCart, requesterID, recipeID)
}

func (s *RelationService) addRecipeRelation(ctx context.Context, kind model.RelationKind, requesterID, recipeID string) (*model.RecipeShort, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}

	if err := s.add(ctx, kind, requesterID, recipeID); err != nil {
		return nil, err
	}
	return recipe.ToShort(), nil
}

func (s *RelationService) removeRecipeRelation(ctx context.Context, kind model.RelationKind, requesterID, recipeID string) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe == nil {
		return ErrRecipeNotFound
	}

	return s.remove(ctx, kind, requesterID, recipeID)
}

// Subscribe subscribes the requester to an author. The returned author
// carries up to recipesLimit of their recipes (0 means all).
func (s *RelationService) Subscribe(ctx context.Context, requesterID, authorID string, recipesLimit int) (*model.AuthorWithRecipes, error) {
	if requesterID == authorID {
		return nil, ErrCannotSubscribeSelf
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUserNotFound
	}

	if err := s.add(ctx, model.RelationSubscription, requesterID, authorID); err != nil {
		return nil, err
	}

	return s.authorWithRecipes(ctx, author, recipesLimit)
}

// Unsubscribe removes the requester's subscription to an author
func (s *RelationService) Unsubscribe(ctx context.Context, requesterID, authorID string) error {
	if requesterID == authorID {
		return ErrCannotSubscribeSelf
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrUserNotFound
	}

	return s.remove(ctx, model.RelationSubscription, requesterID, authorID)
}

// Subscriptions lists the authors the requester follows, at most limit
// of them (0 means all), each with up to recipesLimit of their recipes
// (0 means all) and their full recipe count
func (s *RelationService) Subscriptions(ctx context.Context, requesterID string, limit, recipesLimit int) ([]*model.AuthorWithRecipes, error) {
	authorIDs, err := s.relationRepo.ListTargetIDs(ctx, model.RelationSubscription, requesterID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(authorIDs) > limit {
		authorIDs = authorIDs[:limit]
	}

	authors := make([]*model.AuthorWithRecipes, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		author, err := s.userRepo.GetByID(ctx, authorID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			continue
		}

		entry, err := s.authorWithRecipes(ctx, author, recipesLimit)
		if err != nil {
			return nil, err
		}
		authors = append(authors, entry)
	}
	return authors, nil
}

// IsSubscribed reports whether the requester follows the author.
// An empty requester never follows anyone.
func (s *RelationService) IsSubscribed(ctx context.Context, requesterID, authorID string) (bool, error) {
	if requesterID == "" {
		return false, nil
	}
	membership, err := s.relationRepo.Get(ctx, model.RelationSubscription, requesterID, authorID)
	if err != nil {
		return false, err
	}
	return membership != nil, nil
}

// add runs the common half of every add toggle: reject the duplicate,
// then insert
func (s *RelationService) add(ctx context.Context, kind model.RelationKind, userID, targetID string) error {
	existing, err := s.relationRepo.Get(ctx, kind, userID, targetID)
	if err != nil {
		return err
	}
	if existing != nil {
		return relationErrors[kind].alreadyExists
	}

	// A concurrent add can slip past the pre-check; the unique index
	// rejects it and the loser gets the same duplicate error.
	_, err = s.relationRepo.Create(ctx, kind, userID, targetID)
	if errors.Is(err, database.ErrDuplicate) {
		return relationErrors[kind].alreadyExists
	}
	return err
}

// remove runs the common half of every remove toggle: reject the absent
// membership, then delete
func (s *RelationService) remove(ctx context.Context, kind model.RelationKind, userID, targetID string) error {
	existing, err := s.relationRepo.Get(ctx, kind, userID, targetID)
	if err != nil {
		return err
	}
	if existing == nil {
		return relationErrors[kind].notAMember
	}

	return s.relationRepo.Delete(ctx, kind, userID, targetID)
}

func (s *RelationService) authorWithRecipes(ctx context.Context, author *model.User, recipesLimit int) (*model.AuthorWithRecipes, error) {
	recipes, err := s.recipeRepo.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return nil, err
	}
	count, err := s.recipeRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}

	shorts := make([]*model.RecipeShort, 0, len(recipes))
	for _, recipe := range recipes {
		shorts = append(shorts, recipe.ToShort())
	}

	return &model.AuthorWithRecipes{
		UserPublic:   *author.ToPublic(true),
		Recipes:      shorts,
		RecipesCount: count,
	}, nil
}
