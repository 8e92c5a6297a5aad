package service

import (
	"context"

	"github.com/platefeed/api/internal/model"
)

// TagRepository defines the interface for tag catalog storage
type TagRepository interface {
	GetAll(ctx context.Context) ([]*model.Tag, error)
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Tag, error)
}

// IngredientRepository defines the interface for ingredient catalog storage
type IngredientRepository interface {
	List(ctx context.Context, namePrefix string, limit int) ([]*model.Ingredient, error)
	GetByID(ctx context.Context, id string) (*model.Ingredient, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Ingredient, error)
}

// CatalogService serves the read-only tag and ingredient catalogs
type CatalogService struct {
	tagRepo        TagRepository
	ingredientRepo IngredientRepository
}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	TagRepo        TagRepository
	IngredientRepo IngredientRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	return &CatalogService{
		tagRepo:        cfg.TagRepo,
		ingredientRepo: cfg.IngredientRepo,
	}
}

// ListTags retrieves all tags
func (s *CatalogService) ListTags(ctx context.Context) ([]*model.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

// GetTag retrieves a tag by ID
func (s *CatalogService) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, ErrTagNotFound
	}
	return tag, nil
}

// ListIngredients retrieves ingredients, optionally narrowed by a
// case-insensitive name prefix
func (s *CatalogService) ListIngredients(ctx context.Context, namePrefix string, limit int) ([]*model.Ingredient, error) {
	return s.ingredientRepo.List(ctx, namePrefix, limit)
}

// GetIngredient retrieves an ingredient by ID
func (s *CatalogService) GetIngredient(ctx context.Context, id string) (*model.Ingredient, error) {
	ingredient, err := s.ingredientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, ErrIngredientNotFound
	}
	return ingredient, nil
}
