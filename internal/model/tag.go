package model

// Field length limits for tags
const (
	MaxTagNameLength  = 200
	MaxTagColorLength = 16
	MaxTagSlugLength  = 200
)

// Tag represents a recipe tag (breakfast, lunch, dinner, ...).
// Color is intended as a hex code but stored as free text.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}
