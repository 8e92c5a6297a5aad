package handler

import (
	"errors"

	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// A service that validated a request already built the response
	var problem *model.ProblemDetails
	if errors.As(err, &problem) {
		return problem
	}

	// ===== Authentication Errors → 401 =====
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotRecipeAuthor):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrRecipeNotFound):
		return model.NewNotFoundError("recipe")
	case errors.Is(err, service.ErrTagNotFound):
		return model.NewNotFoundError("tag")
	case errors.Is(err, service.ErrIngredientNotFound):
		return model.NewNotFoundError("ingredient")

	// ===== Toggle Errors → 400 =====
	// Repeating an add or removing an absent membership is a client
	// error, not a no-op.
	case errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrAlreadyInCart),
		errors.Is(err, service.ErrNotInCart),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrCannotSubscribeSelf):
		return model.NewBadRequestError(err.Error())

	// ===== Admin Errors → 400 =====
	case errors.Is(err, service.ErrCannotModifySelf),
		errors.Is(err, service.ErrInvalidRole):
		return model.NewBadRequestError(err.Error())

	// ===== Registration Errors → 400 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrUsernameAlreadyExists):
		return model.NewBadRequestError(err.Error())

	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})

	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrUsernameTooLong),
		errors.Is(err, service.ErrInvalidUsername):
		return model.NewValidationError([]model.FieldError{{Field: "username", Message: err.Error()}})

	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
