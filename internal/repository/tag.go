package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"
)

// TagRepository handles tag catalog data access
type TagRepository struct {
	db database.Database
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db database.Database) *TagRepository {
	return &TagRepository{db: db}
}

// GetAll retrieves all tags
func (r *TagRepository) GetAll(ctx context.Context) ([]*model.Tag, error) {
	query := `SELECT * FROM tag ORDER BY name`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return r.parseTagsResult(result)
}

// GetByID retrieves a tag by ID
func (r *TagRepository) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tag, err := r.parseTagResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return tag, nil
}

// GetByIDs retrieves tags for a set of IDs. Missing IDs are simply absent
// from the result; the caller decides whether that is an error.
func (r *TagRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Tag, error) {
	if len(ids) == 0 {
		return []*model.Tag{}, nil
	}

	query := `SELECT * FROM tag WHERE id IN $ids`
	vars := map[string]interface{}{"ids": ids}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseTagsResult(result)
}

// GetBySlugs retrieves tags matching any of the given slugs
func (r *TagRepository) GetBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	if len(slugs) == 0 {
		return []*model.Tag{}, nil
	}

	query := `SELECT * FROM tag WHERE slug IN $slugs`
	vars := map[string]interface{}{"slugs": slugs}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseTagsResult(result)
}

// Create creates a new tag
func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	query := `
		CREATE tag CONTENT {
			name: $name,
			color: $color,
			slug: $slug,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"name":  tag.Name,
		"color": tag.Color,
		"slug":  tag.Slug,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: slug already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	tag.ID = created.ID
	return nil
}

// Helper functions

func (r *TagRepository) parseTagResult(result interface{}) (*model.Tag, error) {
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

	var tag model.Tag
	if err := json.Unmarshal(jsonBytes, &tag); err != nil {
		return nil, err
	}

	return &tag, nil
}

func (r *TagRepository) parseTagsResult(result []interface{}) ([]*model.Tag, error) {
	tags := make([]*model.Tag, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					tag, err := r.parseTagResult(item)
					if err != nil {
						continue
					}
					tags = append(tags, tag)
				}
				continue
			}
		}

		tag, err := r.parseTagResult(res)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}

	return tags, nil
}
