package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"
)

// RecipeRepository handles recipe aggregate data access. A recipe, its
// tag links and its ingredient lines form one aggregate: writes touch
// all three tables in a single transaction.
type RecipeRepository struct {
	db database.Database
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db database.Database) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// newRecipeID generates a record ID for a recipe created in a batch
// transaction. Batches cannot read intermediate results back, so the ID
// is chosen client-side and referenced by the link rows in the same
// batch.
func newRecipeID() string {
	return "recipe:" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Create inserts the recipe row, its tag links and its ingredient lines
// atomically. On success recipe.ID is set to the new record ID.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe, tagIDs []string, lines []model.IngredientLine) error {
	recipeID := newRecipeID()

	batch := database.NewAtomicBatch()
	batch.Add(`
		CREATE type::record($recipe_id) CONTENT {
			author: type::record($author_id),
			name: $name,
			image: $image,
			text: $text,
			cooking_time: $cooking_time,
			created_on: time::now(),
			updated_on: time::now()
		}
	`, map[string]interface{}{
		"recipe_id":    recipeID,
		"author_id":    recipe.AuthorID,
		"name":         recipe.Name,
		"image":        recipe.Image,
		"text":         recipe.Text,
		"cooking_time": recipe.CookingTime,
	})

	addLinkRows(batch, recipeID, tagIDs, lines)

	if err := batch.Execute(ctx, r.db); err != nil {
		return err
	}

	recipe.ID = recipeID
	return nil
}

// Update rewrites the recipe row atomically. When tagIDs or lines are
// non-nil the stored links are dropped and recreated from scratch; the
// previous set never survives in part.
func (r *RecipeRepository) Update(ctx context.Context, recipe *model.Recipe, tagIDs *[]string, lines *[]model.IngredientLine) error {
	batch := database.NewAtomicBatch()
	batch.Add(`
		UPDATE type::record($recipe_id) SET
			author = type::record($author_id),
			name = $name,
			image = $image,
			text = $text,
			cooking_time = $cooking_time,
			updated_on = time::now()
	`, map[string]interface{}{
		"recipe_id":    recipe.ID,
		"author_id":    recipe.AuthorID,
		"name":         recipe.Name,
		"image":        recipe.Image,
		"text":         recipe.Text,
		"cooking_time": recipe.CookingTime,
	})

	if tagIDs != nil {
		batch.Add(`DELETE recipe_tag WHERE recipe = type::record($recipe_id)`,
			map[string]interface{}{"recipe_id": recipe.ID})
	}
	if lines != nil {
		batch.Add(`DELETE recipe_ingredient WHERE recipe = type::record($recipe_id)`,
			map[string]interface{}{"recipe_id": recipe.ID})
	}

	var newTags []string
	if tagIDs != nil {
		newTags = *tagIDs
	}
	var newLines []model.IngredientLine
	if lines != nil {
		newLines = *lines
	}
	addLinkRows(batch, recipe.ID, newTags, newLines)

	return batch.Execute(ctx, r.db)
}

func addLinkRows(batch *database.AtomicBatch, recipeID string, tagIDs []string, lines []model.IngredientLine) {
	for _, tagID := range tagIDs {
		batch.Add(`
			CREATE recipe_tag CONTENT {
				recipe: type::record($recipe_id),
				tag: type::record($tag_id),
				created_on: time::now()
			}
		`, map[string]interface{}{
			"recipe_id": recipeID,
			"tag_id":    tagID,
		})
	}
	for _, line := range lines {
		batch.Add(`
			CREATE recipe_ingredient CONTENT {
				recipe: type::record($recipe_id),
				ingredient: type::record($ingredient_id),
				amount: $amount,
				created_on: time::now()
			}
		`, map[string]interface{}{
			"recipe_id":     recipeID,
			"ingredient_id": line.IngredientID,
			"amount":        line.Amount,
		})
	}
}

// GetByID retrieves a recipe by ID
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*model.Recipe, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	recipe, err := r.parseRecipeResult(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return recipe, nil
}

// List retrieves recipes matching the filter, newest first
func (r *RecipeRepository) List(ctx context.Context, filter *model.RecipeFilter) ([]*model.Recipe, error) {
	query := `SELECT * FROM recipe`
	vars := map[string]interface{}{}

	var conditions []string
	if filter.AuthorID != "" {
		conditions = append(conditions, `author = type::record($author_id)`)
		vars["author_id"] = filter.AuthorID
	}
	if len(filter.TagSlugs) > 0 {
		conditions = append(conditions, `id IN (SELECT VALUE recipe FROM recipe_tag WHERE tag.slug IN $tag_slugs)`)
		vars["tag_slugs"] = filter.TagSlugs
	}
	if filter.OnlyFavorited && filter.RequesterID != "" {
		conditions = append(conditions, `id IN (SELECT VALUE target FROM favorite WHERE user = type::record($fav_user))`)
		vars["fav_user"] = filter.RequesterID
	}
	if filter.OnlyInCart && filter.RequesterID != "" {
		conditions = append(conditions, `id IN (SELECT VALUE target FROM cart_item WHERE user = type::record($cart_user))`)
		vars["cart_user"] = filter.RequesterID
	}

	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY created_on DESC`
	if filter.Limit > 0 {
		query += ` LIMIT $limit`
		vars["limit"] = filter.Limit
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseRecipesResult(result)
}

// ListByAuthor retrieves an author's recipes, newest first.
// limit <= 0 means no limit.
func (r *RecipeRepository) ListByAuthor(ctx context.Context, authorID string, limit int) ([]*model.Recipe, error) {
	return r.List(ctx, &model.RecipeFilter{AuthorID: authorID, Limit: limit})
}

// CountByAuthor counts an author's recipes
func (r *RecipeRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	query := `SELECT count() as count FROM recipe WHERE author = type::record($author_id) GROUP ALL`
	vars := map[string]interface{}{"author_id": authorID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// Delete removes the recipe together with its link rows and every
// favorite and cart membership pointing at it
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	batch := database.NewAtomicBatch()
	for _, q := range []string{
		`DELETE recipe_tag WHERE recipe = type::record($id)`,
		`DELETE recipe_ingredient WHERE recipe = type::record($id)`,
		`DELETE favorite WHERE target = type::record($id)`,
		`DELETE cart_item WHERE target = type::record($id)`,
		`DELETE type::record($id)`,
	} {
		batch.Add(q, map[string]interface{}{"id": id})
	}
	return batch.Execute(ctx, r.db)
}

// GetTags retrieves the tags linked to a recipe
func (r *RecipeRepository) GetTags(ctx context.Context, recipeID string) ([]*model.Tag, error) {
	query := `
		SELECT
			tag.id as id,
			tag.name as name,
			tag.color as color,
			tag.slug as slug
		FROM recipe_tag
		WHERE recipe = type::record($recipe_id)
		ORDER BY created_on ASC
	`
	vars := map[string]interface{}{"recipe_id": recipeID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	tags := make([]*model.Tag, 0)
	records, _ := extractQueryResults(result)
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		tags = append(tags, &model.Tag{
			ID:    convertSurrealID(data["id"]),
			Name:  getString(data, "name"),
			Color: getString(data, "color"),
			Slug:  getString(data, "slug"),
		})
	}
	return tags, nil
}

// GetIngredientLines retrieves the stored ingredient lines of a recipe
// joined with their catalog records
func (r *RecipeRepository) GetIngredientLines(ctx context.Context, recipeID string) ([]*model.RecipeIngredient, error) {
	query := `
		SELECT
			ingredient.id as ingredient_id,
			ingredient.name as name,
			ingredient.measurement_unit as measurement_unit,
			amount
		FROM recipe_ingredient
		WHERE recipe = type::record($recipe_id)
		ORDER BY created_on ASC
	`
	vars := map[string]interface{}{"recipe_id": recipeID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	lines := make([]*model.RecipeIngredient, 0)
	records, _ := extractQueryResults(result)
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		lines = append(lines, &model.RecipeIngredient{
			IngredientID:    convertSurrealID(data["ingredient_id"]),
			Name:            getString(data, "name"),
			MeasurementUnit: getString(data, "measurement_unit"),
			Amount:          getInt(data, "amount"),
		})
	}
	return lines, nil
}

// Helper functions

func (r *RecipeRepository) parseRecipeResult(result interface{}) (*model.Recipe, error) {
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
		return nil, fmt.Errorf("unexpected result format: %T", result)
	}

	recipe := &model.Recipe{
		Name:        getString(data, "name"),
		Image:       getString(data, "image"),
		Text:        getString(data, "text"),
		CookingTime: getInt(data, "cooking_time"),
		CreatedOn:   parseTime(data["created_on"]),
		UpdatedOn:   parseTime(data["updated_on"]),
	}
	if id, ok := data["id"]; ok {
		recipe.ID = convertSurrealID(id)
	}
	if author, ok := data["author"]; ok {
		recipe.AuthorID = convertSurrealID(author)
	}

	return recipe, nil
}

func (r *RecipeRepository) parseRecipesResult(result []interface{}) ([]*model.Recipe, error) {
	recipes := make([]*model.Recipe, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					recipe, err := r.parseRecipeResult(item)
					if err != nil {
						continue
					}
					recipes = append(recipes, recipe)
				}
				continue
			}
		}

		recipe, err := r.parseRecipeResult(res)
		if err != nil {
			continue
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}
