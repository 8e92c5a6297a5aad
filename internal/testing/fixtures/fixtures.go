// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories handle database insertion
// and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	user := f.CreateUser(t)
//	tag := f.CreateTag(t)
//	recipe := f.CreateRecipe(t, user)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email    string
	Username string
	Password string
	Role     model.UserRole
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Email:    fmt.Sprintf("user_%s@test.local", randomID()),
		Username: fmt.Sprintf("user_%s", randomID()),
		Password: "testpass123",
		Role:     model.UserRoleUser,
	}
	for _, fn := range opts {
		fn(o)
	}

	// MinCost keeps fixture creation fast
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	query := `
		CREATE user CONTENT {
			email: $email,
			username: $username,
			hash: $hash,
			role: $role,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":    o.Email,
		"username": o.Username,
		"hash":     string(hash),
		"role":     string(o.Role),
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user := parseUserResult(t, results)
	user.Hash = nil // Don't expose hash in fixture
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// ============================================================================
// Catalog Fixtures
// ============================================================================

// TagOpts customizes tag creation
type TagOpts struct {
	Name  string
	Color string
	Slug  string
}

// CreateTag creates a tag
func (f *Factory) CreateTag(t *testing.T, opts ...func(*TagOpts)) *model.Tag {
	t.Helper()

	id := randomID()
	o := &TagOpts{
		Name:  fmt.Sprintf("Tag %s", id),
		Color: "#49B64E",
		Slug:  fmt.Sprintf("tag-%s", id),
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE tag CONTENT {
			name: $name,
			color: $color,
			slug: $slug
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"name":  o.Name,
		"color": o.Color,
		"slug":  o.Slug,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create tag: %v", err)
	}

	return parseTagResult(t, results)
}

// IngredientOpts customizes ingredient creation
type IngredientOpts struct {
	Name            string
	MeasurementUnit string
	Count           int
}

// CreateIngredient creates a catalog ingredient
func (f *Factory) CreateIngredient(t *testing.T, opts ...func(*IngredientOpts)) *model.Ingredient {
	t.Helper()

	o := &IngredientOpts{
		Name:            fmt.Sprintf("Ingredient %s", randomID()),
		MeasurementUnit: "g",
		Count:           1,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE ingredient CONTENT {
			name: $name,
			measurement_unit: $unit,
			count: $count
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"name":  o.Name,
		"unit":  o.MeasurementUnit,
		"count": o.Count,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create ingredient: %v", err)
	}

	return parseIngredientResult(t, results)
}

// WithIngredient sets the ingredient name and unit
func WithIngredient(name, unit string) func(*IngredientOpts) {
	return func(o *IngredientOpts) {
		o.Name = name
		o.MeasurementUnit = unit
	}
}

// ============================================================================
// Recipe Fixtures
// ============================================================================

// RecipeOpts customizes recipe creation
type RecipeOpts struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
}

// CreateRecipe creates a recipe owned by the given author
func (f *Factory) CreateRecipe(t *testing.T, author *model.User, opts ...func(*RecipeOpts)) *model.Recipe {
	t.Helper()

	o := &RecipeOpts{
		Name:        fmt.Sprintf("Recipe %s", randomID()),
		Image:       "data:image/png;base64,iVBOR",
		Text:        "Test recipe instructions.",
		CookingTime: 30,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE recipe CONTENT {
			author: type::record($author_id),
			name: $name,
			image: $image,
			text: $text,
			cooking_time: $cooking_time,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"author_id":    author.ID,
		"name":         o.Name,
		"image":        o.Image,
		"text":         o.Text,
		"cooking_time": o.CookingTime,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create recipe: %v", err)
	}

	recipe := parseRecipeResult(t, results)
	recipe.AuthorID = author.ID
	return recipe
}

// LinkTag attaches a tag to a recipe
func (f *Factory) LinkTag(t *testing.T, recipe *model.Recipe, tag *model.Tag) {
	t.Helper()

	query := `
		CREATE recipe_tag CONTENT {
			recipe: type::record($recipe_id),
			tag: type::record($tag_id)
		}
	`
	if err := f.db.Execute(ctx(), query, map[string]interface{}{
		"recipe_id": recipe.ID,
		"tag_id":    tag.ID,
	}); err != nil {
		t.Fatalf("fixtures: failed to link tag: %v", err)
	}
}

// LinkIngredient attaches an ingredient line to a recipe
func (f *Factory) LinkIngredient(t *testing.T, recipe *model.Recipe, ingredient *model.Ingredient, amount int) {
	t.Helper()

	query := `
		CREATE recipe_ingredient CONTENT {
			recipe: type::record($recipe_id),
			ingredient: type::record($ingredient_id),
			amount: $amount
		}
	`
	if err := f.db.Execute(ctx(), query, map[string]interface{}{
		"recipe_id":     recipe.ID,
		"ingredient_id": ingredient.ID,
		"amount":        amount,
	}); err != nil {
		t.Fatalf("fixtures: failed to link ingredient: %v", err)
	}
}

// ============================================================================
// Membership Fixtures
// ============================================================================

// AddFavorite marks a recipe as favorited by the user
func (f *Factory) AddFavorite(t *testing.T, user *model.User, recipe *model.Recipe) {
	f.createMembership(t, "favorite", user.ID, recipe.ID)
}

// AddToCart puts a recipe in the user's shopping cart
func (f *Factory) AddToCart(t *testing.T, user *model.User, recipe *model.Recipe) {
	f.createMembership(t, "cart_item", user.ID, recipe.ID)
}

// Subscribe subscribes the user to the author
func (f *Factory) Subscribe(t *testing.T, user, author *model.User) {
	f.createMembership(t, "subscription", user.ID, author.ID)
}

func (f *Factory) createMembership(t *testing.T, table, userID, targetID string) {
	t.Helper()

	query := fmt.Sprintf(`
		CREATE %s CONTENT {
			user: type::record($user_id),
			target: type::record($target_id),
			created_on: time::now()
		}
	`, table)
	if err := f.db.Execute(ctx(), query, map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
	}); err != nil {
		t.Fatalf("fixtures: failed to create %s: %v", table, err)
	}
}

// ============================================================================
// Result Parsing Helpers
// ============================================================================

func parseUserResult(t *testing.T, results []interface{}) *model.User {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.User{
		ID:        getString(data, "id"),
		Email:     getString(data, "email"),
		Username:  getString(data, "username"),
		Role:      model.UserRole(getString(data, "role")),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}

func parseTagResult(t *testing.T, results []interface{}) *model.Tag {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.Tag{
		ID:    getString(data, "id"),
		Name:  getString(data, "name"),
		Color: getString(data, "color"),
		Slug:  getString(data, "slug"),
	}
}

func parseIngredientResult(t *testing.T, results []interface{}) *model.Ingredient {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.Ingredient{
		ID:              getString(data, "id"),
		Name:            getString(data, "name"),
		MeasurementUnit: getString(data, "measurement_unit"),
		Count:           getInt(data, "count"),
	}
}

func parseRecipeResult(t *testing.T, results []interface{}) *model.Recipe {
	t.Helper()
	data := extractFirstResult(t, results)
	return &model.Recipe{
		ID:          getString(data, "id"),
		Name:        getString(data, "name"),
		Image:       getString(data, "image"),
		Text:        getString(data, "text"),
		CookingTime: getInt(data, "cooking_time"),
		CreatedOn:   getTime(data, "created_on"),
		UpdatedOn:   getTime(data, "updated_on"),
	}
}

// ============================================================================
// Data Extraction Helpers
// ============================================================================

func extractFirstResult(t *testing.T, results []interface{}) map[string]interface{} {
	t.Helper()
	if len(results) == 0 {
		t.Fatal("fixtures: no results returned")
	}

	// Handle SurrealDB response wrapper
	resp, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", results[0])
	}

	result, ok := resp["result"]
	if !ok {
		t.Fatal("fixtures: no result in response")
	}

	// Handle array result
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			t.Fatal("fixtures: empty result array")
		}
		data, ok := arr[0].(map[string]interface{})
		if !ok {
			t.Fatalf("fixtures: unexpected array item type: %T", arr[0])
		}
		return data
	}

	// Handle single result
	data, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", result)
	}
	return data
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	// Handle SurrealDB record ID type - could be a struct or map
	if v := data[key]; v != nil {
		// Try to get the ID as a map with "tb" (table) and "id" fields
		if m, ok := v.(map[string]interface{}); ok {
			if tb, ok := m["tb"].(string); ok {
				if id := m["id"]; id != nil {
					return fmt.Sprintf("%s:%v", tb, id)
				}
			}
		}
		// Fallback: use string conversion but fix the format if needed
		s := fmt.Sprintf("%v", v)
		// Convert "{table id}" to "table:id"
		if len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}' {
			inner := s[1 : len(s)-1]
			for i, c := range inner {
				if c == ' ' {
					return inner[:i] + ":" + inner[i+1:]
				}
			}
		}
		return s
	}
	return ""
}

func getInt(data map[string]interface{}, key string) int {
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(string); ok {
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	}
	return time.Time{}
}
