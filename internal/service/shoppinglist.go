package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/platefeed/api/internal/model"
)

// CartAggregator is the cart aggregation access the shopping list
// service needs
type CartAggregator interface {
	AggregateCartIngredients(ctx context.Context, userID string) ([]*model.ShoppingListItem, error)
}

// ShoppingListService renders the shopping list report: every
// ingredient line of every recipe in the requester's cart, summed per
// ingredient name and measurement unit
type ShoppingListService struct {
	relationRepo CartAggregator
	userRepo     UserReader
}

// ShoppingListServiceConfig holds configuration for the shopping list service
type ShoppingListServiceConfig struct {
	RelationRepo CartAggregator
	UserRepo     UserReader
}

// NewShoppingListService creates a new shopping list service
func NewShoppingListService(cfg ShoppingListServiceConfig) *ShoppingListService {
	return &ShoppingListService{
		relationRepo: cfg.RelationRepo,
		userRepo:     cfg.UserRepo,
	}
}

// ShoppingList is a rendered shopping list report together with its
// download filename
type ShoppingList struct {
	Filename string
	Content  string
}

// BuildList renders the shopping list for the given user. Reading the
// list never mutates the cart; an empty cart yields just the header and
// footer.
func (s *ShoppingListService) BuildList(ctx context.Context, userID string) (*ShoppingList, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	items, err := s.relationRepo.AggregateCartIngredients(ctx, userID)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Shopping list for %s\n\n", user.Username))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s: %d %s\n", item.Name, item.Amount, item.MeasurementUnit))
	}
	sb.WriteString("\nGenerated by Platefeed\n")

	return &ShoppingList{
		Filename: user.Username + "_shopping_list.txt",
		Content:  sb.String(),
	}, nil
}
