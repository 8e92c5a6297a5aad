package model

import "time"

// Cooking time bounds (minutes, inclusive)
const (
	MinCookingTime = 1
	MaxCookingTime = 600
)

// Field length limits for recipes
const (
	MaxRecipeNameLength = 200
	MaxRecipeTextLength = 5000
)

// Recipe represents the core recipe record. Tag links and ingredient
// lines are stored separately and treated as part of the same aggregate:
// they are written together with the recipe or not at all.
type Recipe struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"` // opaque asset reference
	Text        string    `json:"text"`
	CookingTime int       `json:"cooking_time"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// IngredientLine is one (ingredient, amount) pair supplied on create/update.
// Amount must be a positive integer; an ingredient may appear at most once
// per recipe.
type IngredientLine struct {
	IngredientID string `json:"ingredient_id"`
	Amount       int    `json:"amount"`
}

// RecipeIngredient is a stored ingredient-quantity row joined with its
// catalog ingredient for rendering.
type RecipeIngredient struct {
	IngredientID    string `json:"ingredient_id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeDetail is a fully resolved recipe aggregate: the recipe row plus
// its author, tag set, ingredient lines, and the membership flags of the
// requesting user. Anonymous requesters always see both flags false.
type RecipeDetail struct {
	Recipe
	Author           *UserPublic         `json:"author"`
	Tags             []*Tag              `json:"tags"`
	Ingredients      []*RecipeIngredient `json:"ingredients"`
	IsFavorited      bool                `json:"is_favorited"`
	IsInShoppingCart bool                `json:"is_in_shopping_cart"`
}

// RecipeShort is the compact representation returned by the favorite and
// shopping cart toggles and embedded in subscription listings.
type RecipeShort struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// ToShort converts a Recipe to its compact representation
func (r *Recipe) ToShort() *RecipeShort {
	return &RecipeShort{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// CreateRecipeRequest carries the fields of a recipe create
type CreateRecipeRequest struct {
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Text        string           `json:"text"`
	CookingTime int              `json:"cooking_time"`
	TagIDs      []string         `json:"tags"`
	Ingredients []IngredientLine `json:"ingredients"`
}

// Validate checks the create request fields
func (r *CreateRecipeRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxRecipeNameLength {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
	}
	if r.Image == "" {
		errors = append(errors, FieldError{Field: "image", Message: "image is required"})
	}
	if r.Text == "" {
		errors = append(errors, FieldError{Field: "text", Message: "text is required"})
	} else if len(r.Text) > MaxRecipeTextLength {
		errors = append(errors, FieldError{Field: "text", Message: "text must be 5000 characters or less"})
	}
	if r.CookingTime < MinCookingTime || r.CookingTime > MaxCookingTime {
		errors = append(errors, FieldError{Field: "cooking_time", Message: "cooking_time must be between 1 and 600 minutes"})
	}
	if len(r.TagIDs) == 0 {
		errors = append(errors, FieldError{Field: "tags", Message: "at least one tag is required"})
	}
	errors = append(errors, validateIngredientLines(r.Ingredients)...)

	return errors
}

// UpdateRecipeRequest carries a partial recipe update. Only non-nil
// fields are touched. When TagIDs or Ingredients are present the stored
// links are fully replaced, never diffed.
type UpdateRecipeRequest struct {
	Name        *string           `json:"name,omitempty"`
	Image       *string           `json:"image,omitempty"`
	Text        *string           `json:"text,omitempty"`
	CookingTime *int              `json:"cooking_time,omitempty"`
	TagIDs      *[]string         `json:"tags,omitempty"`
	Ingredients *[]IngredientLine `json:"ingredients,omitempty"`
}

// Validate checks the non-nil fields of the update request
func (r *UpdateRecipeRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil {
		if *r.Name == "" {
			errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxRecipeNameLength {
			errors = append(errors, FieldError{Field: "name", Message: "name must be 200 characters or less"})
		}
	}
	if r.Image != nil && *r.Image == "" {
		errors = append(errors, FieldError{Field: "image", Message: "image cannot be empty"})
	}
	if r.Text != nil {
		if *r.Text == "" {
			errors = append(errors, FieldError{Field: "text", Message: "text cannot be empty"})
		} else if len(*r.Text) > MaxRecipeTextLength {
			errors = append(errors, FieldError{Field: "text", Message: "text must be 5000 characters or less"})
		}
	}
	if r.CookingTime != nil && (*r.CookingTime < MinCookingTime || *r.CookingTime > MaxCookingTime) {
		errors = append(errors, FieldError{Field: "cooking_time", Message: "cooking_time must be between 1 and 600 minutes"})
	}
	if r.TagIDs != nil && len(*r.TagIDs) == 0 {
		errors = append(errors, FieldError{Field: "tags", Message: "at least one tag is required"})
	}
	if r.Ingredients != nil {
		errors = append(errors, validateIngredientLines(*r.Ingredients)...)
	}

	return errors
}

func validateIngredientLines(lines []IngredientLine) []FieldError {
	var errors []FieldError

	if len(lines) == 0 {
		return append(errors, FieldError{Field: "ingredients", Message: "at least one ingredient is required"})
	}
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if line.IngredientID == "" {
			errors = append(errors, FieldError{Field: "ingredients", Message: "ingredient_id is required"})
			continue
		}
		if line.Amount < 1 {
			errors = append(errors, FieldError{Field: "ingredients", Message: "amount must be at least 1"})
		}
		if seen[line.IngredientID] {
			errors = append(errors, FieldError{Field: "ingredients", Message: "ingredients must not repeat"})
		}
		seen[line.IngredientID] = true
	}

	return errors
}

// RecipeFilter holds the query filters of the recipe listing.
// RequesterID scopes the membership filters; OnlyFavorited and
// OnlyInCart are ignored when it is empty (anonymous requester).
type RecipeFilter struct {
	AuthorID      string
	TagSlugs      []string
	OnlyFavorited bool
	OnlyInCart    bool
	RequesterID   string
	Limit         int
}
