package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleUser  UserRole = "user"  // Default role
	UserRoleAdmin UserRole = "admin" // Can edit and delete any recipe
)

// Field length limits for user accounts
const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxNameLength     = 150
	MaxBioLength      = 500
)

// User represents a user account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Hash      *string   `json:"-"` // Never expose password hash
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserPublic is a user as seen by other users, annotated with the
// subscription state of the requesting user.
type UserPublic struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	IsSubscribed bool    `json:"is_subscribed"`
}

// ToPublic converts a User to its public representation.
// isSubscribed reflects whether the requesting user follows this user.
func (u *User) ToPublic(isSubscribed bool) *UserPublic {
	return &UserPublic{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Bio:          u.Bio,
		IsSubscribed: isSubscribed,
	}
}

// AuthorWithRecipes is a subscribed author annotated with their recipes,
// as returned by the subscriptions listing.
type AuthorWithRecipes struct {
	UserPublic
	Recipes      []*RecipeShort `json:"recipes"`
	RecipesCount int            `json:"recipes_count"`
}

// UpdateProfileRequest is the request body for updating own profile fields
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Validate checks the non-nil fields of the profile update request
func (r *UpdateProfileRequest) Validate() []FieldError {
	var errors []FieldError
	if r.FirstName != nil && len(*r.FirstName) > MaxNameLength {
		errors = append(errors, FieldError{Field: "first_name", Message: "first name is too long"})
	}
	if r.LastName != nil && len(*r.LastName) > MaxNameLength {
		errors = append(errors, FieldError{Field: "last_name", Message: "last name is too long"})
	}
	if r.Bio != nil && len(*r.Bio) > MaxBioLength {
		errors = append(errors, FieldError{Field: "bio", Message: "bio is too long"})
	}
	return errors
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}
