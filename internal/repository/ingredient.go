package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"
)

// IngredientRepository handles ingredient catalog data access
type IngredientRepository struct {
	db database.Database
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db database.Database) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// List retrieves ingredients, optionally narrowed to names starting with
// the given prefix. The prefix match is case-insensitive. limit <= 0
// means no limit.
func (r *IngredientRepository) List(ctx context.Context, namePrefix string, limit int) ([]*model.Ingredient, error) {
	query := `SELECT * FROM ingredient`
	vars := map[string]interface{}{}

	if namePrefix != "" {
		query += ` WHERE string::starts_with(string::lowercase(name), string::lowercase($prefix))`
		vars["prefix"] = namePrefix
	}
	query += ` ORDER BY name`
	if limit > 0 {
		query += ` LIMIT $limit`
		vars["limit"] = limit
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseIngredientsResult(result)
}

// GetByID retrieves an ingredient by ID
func (r *IngredientRepository) GetByID(ctx context.Context, id string) (*model.Ingredient, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ingredient, err := r.parseIngredientResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ingredient, nil
}

// GetByIDs retrieves ingredients for a set of IDs. Missing IDs are absent
// from the result.
func (r *IngredientRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Ingredient, error) {
	if len(ids) == 0 {
		return []*model.Ingredient{}, nil
	}

	query := `SELECT * FROM ingredient WHERE id IN $ids`
	vars := map[string]interface{}{"ids": ids}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseIngredientsResult(result)
}

// Create creates a new ingredient
func (r *IngredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) error {
	if ingredient.Count <= 0 {
		ingredient.Count = 1
	}

	query := `
		CREATE ingredient CONTENT {
			name: $name,
			measurement_unit: $measurement_unit,
			count: $count,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":             ingredient.Name,
		"measurement_unit": ingredient.MeasurementUnit,
		"count":            ingredient.Count,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: ingredient already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	ingredient.ID = created.ID
	return nil
}

// Helper functions

func (r *IngredientRepository) parseIngredientResult(result interface{}) (*model.Ingredient, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	// Handle array wrapper
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var ingredient model.Ingredient
	if err := json.Unmarshal(jsonBytes, &ingredient); err != nil {
		return nil, err
	}

	return &ingredient, nil
}

func (r *IngredientRepository) parseIngredientsResult(result []interface{}) ([]*model.Ingredient, error) {
	ingredients := make([]*model.Ingredient, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					ingredient, err := r.parseIngredientResult(item)
					if err != nil {
						continue
					}
					ingredients = append(ingredients, ingredient)
				}
				continue
			}
		}

		ingredient, err := r.parseIngredientResult(res)
		if err != nil {
			continue
		}
		ingredients = append(ingredients, ingredient)
	}

	return ingredients, nil
}
