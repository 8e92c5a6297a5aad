package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrUserNotFound          = errors.New("user not found")
	ErrPasswordRequired      = errors.New("password is required")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong       = errors.New("password must be at most 128 characters")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrUsernameRequired      = errors.New("username is required")
	ErrUsernameTooLong       = errors.New("username exceeds maximum length")
	ErrInvalidUsername       = errors.New("username may only contain letters, digits and ._-")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Catalog Errors =====
var (
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// ===== Recipe Errors =====
var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrNotRecipeAuthor = errors.New("not the author of this recipe")
)

// ===== Admin Errors =====
var (
	ErrCannotModifySelf = errors.New("admins cannot change or delete their own account")
	ErrInvalidRole      = errors.New("invalid role")
)

// ===== Relation Errors =====
var (
	ErrAlreadyFavorited    = errors.New("recipe already in favorites")
	ErrNotFavorited        = errors.New("recipe is not in favorites")
	ErrAlreadyInCart       = errors.New("recipe already in shopping cart")
	ErrNotInCart           = errors.New("recipe is not in shopping cart")
	ErrAlreadySubscribed   = errors.New("already subscribed to this author")
	ErrNotSubscribed       = errors.New("not subscribed to this author")
	ErrCannotSubscribeSelf = errors.New("cannot subscribe to yourself")
)
