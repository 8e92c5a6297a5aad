package service

import (
	"context"

	"github.com/platefeed/api/internal/model"
)

// UserService serves the user directory: profile lookups annotated with
// the requester's subscription state
type UserService struct {
	userRepo     UserRepository
	relationRepo RelationRepository
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo     UserRepository
	RelationRepo RelationRepository
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		userRepo:     cfg.UserRepo,
		relationRepo: cfg.RelationRepo,
	}
}

// Get retrieves a user profile. requesterID may be empty; anonymous
// requesters always see is_subscribed false.
func (s *UserService) Get(ctx context.Context, requesterID, userID string) (*model.UserPublic, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	subscribed := false
	if requesterID != "" && requesterID != user.ID {
		membership, err := s.relationRepo.Get(ctx, model.RelationSubscription, requesterID, user.ID)
		if err != nil {
			return nil, err
		}
		subscribed = membership != nil
	}

	return user.ToPublic(subscribed), nil
}

// List retrieves the user directory, oldest account first.
// limit <= 0 means no limit.
func (s *UserService) List(ctx context.Context, requesterID string, limit int) ([]*model.UserPublic, error) {
	users, err := s.userRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}

	subscribed, err := s.relationRepo.TargetFlags(ctx, model.RelationSubscription, requesterID, userIDs)
	if err != nil {
		return nil, err
	}

	profiles := make([]*model.UserPublic, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.ToPublic(subscribed[user.ID]))
	}
	return profiles, nil
}

// UpdateProfile updates the requester's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID string, firstName, lastName, bio *string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if firstName != nil {
		user.FirstName = stringPtr(*firstName)
	}
	if lastName != nil {
		user.LastName = stringPtr(*lastName)
	}
	if bio != nil {
		user.Bio = stringPtr(*bio)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
