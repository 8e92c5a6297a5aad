package service

import (
	"context"
	"log/slog"

	"github.com/platefeed/api/internal/model"
)

// AdminUserRepository defines the user repo interface needed by AdminService
type AdminUserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, limit int) ([]*model.User, error)
	SetRole(ctx context.Context, userID string, role model.UserRole) error
	Delete(ctx context.Context, id string) error
}

// AdminService handles admin user management operations
type AdminService struct {
	userRepo AdminUserRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo AdminUserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

// ListUsers returns up to limit user accounts including role and email.
func (s *AdminService) ListUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.userRepo.List(ctx, limit)
}

// SetUserRole changes a user's role. Admins cannot change their own role.
func (s *AdminService) SetUserRole(ctx context.Context, adminID, userID string, role model.UserRole) error {
	if role != model.UserRoleUser && role != model.UserRoleAdmin {
		return ErrInvalidRole
	}
	if adminID == userID {
		return ErrCannotModifySelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return err
	}

	slog.Info("user role changed",
		"admin_id", adminID,
		"user_id", userID,
		"role", role)

	return nil
}

// DeleteUser removes a user account. Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if adminID == userID {
		return ErrCannotModifySelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	slog.Info("user account deleted",
		"admin_id", adminID,
		"user_id", userID)

	return nil
}
