package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/model"
)

// RelationRepository handles membership rows for favorites, shopping
// cart items and subscriptions. All three tables share the same shape:
// a user record, a target record and a creation timestamp.
type RelationRepository struct {
	db database.Database
}

// NewRelationRepository creates a new relation repository
func NewRelationRepository(db database.Database) *RelationRepository {
	return &RelationRepository{db: db}
}

func relationTable(kind model.RelationKind) (string, error) {
	switch kind {
	case model.RelationFavorite:
		return "favorite", nil
	case model.RelationCart:
		return "cart_item", nil
	case model.RelationSubscription:
		return "subscription", nil
	default:
		return "", fmt.Errorf("unknown relation kind: %s", kind)
	}
}

// Create inserts a membership row
func (r *RelationRepository) Create(ctx context.Context, kind model.RelationKind, userID, targetID string) (*model.Membership, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		CREATE %s CONTENT {
			user: type::record($user_id),
			target: type::record($target_id),
			created_on: time::now()
		}
	`, table)

	vars := map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: membership already exists", database.ErrDuplicate)
		}
		return nil, err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return nil, err
	}

	return &model.Membership{
		ID:        created.ID,
		Kind:      kind,
		UserID:    userID,
		TargetID:  targetID,
		CreatedOn: created.CreatedOn,
	}, nil
}

// Get retrieves a membership row, or nil when the user does not hold
// the relation to the target
func (r *RelationRepository) Get(ctx context.Context, kind model.RelationKind, userID, targetID string) (*model.Membership, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE user = type::record($user_id) AND target = type::record($target_id)
		LIMIT 1
	`, table)

	vars := map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	membership, err := r.parseMembershipResult(result, kind)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

// Delete removes a membership row
func (r *RelationRepository) Delete(ctx context.Context, kind model.RelationKind, userID, targetID string) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		DELETE %s
		WHERE user = type::record($user_id) AND target = type::record($target_id)
	`, table)

	vars := map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
	}

	return r.db.Execute(ctx, query, vars)
}

// ListTargetIDs retrieves the target IDs the user holds the relation to,
// oldest first
func (r *RelationRepository) ListTargetIDs(ctx context.Context, kind model.RelationKind, userID string) ([]string, error) {
	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT target FROM %s
		WHERE user = type::record($user_id)
		ORDER BY created_on ASC
	`, table)

	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	records, _ := extractQueryResults(result)
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		if target, ok := data["target"]; ok {
			ids = append(ids, convertSurrealID(target))
		}
	}
	return ids, nil
}

// TargetFlags reports which of the given targets the user holds the
// relation to. Unknown targets map to false.
func (r *RelationRepository) TargetFlags(ctx context.Context, kind model.RelationKind, userID string, targetIDs []string) (map[string]bool, error) {
	flags := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		flags[id] = false
	}
	if userID == "" || len(targetIDs) == 0 {
		return flags, nil
	}

	table, err := relationTable(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT target FROM %s
		WHERE user = type::record($user_id) AND target IN $target_ids
	`, table)

	vars := map[string]interface{}{
		"user_id":    userID,
		"target_ids": targetIDs,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	records, _ := extractQueryResults(result)
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		if target, ok := data["target"]; ok {
			flags[convertSurrealID(target)] = true
		}
	}
	return flags, nil
}

// DeleteByTarget removes every membership row of the given kind pointing
// at the target. Used when the target record itself is deleted.
func (r *RelationRepository) DeleteByTarget(ctx context.Context, kind model.RelationKind, targetID string) error {
	table, err := relationTable(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE %s WHERE target = type::record($target_id)`, table)
	vars := map[string]interface{}{"target_id": targetID}

	return r.db.Execute(ctx, query, vars)
}

// AggregateCartIngredients sums ingredient amounts across every recipe
// in the user's shopping cart, grouped by ingredient name and
// measurement unit
func (r *RelationRepository) AggregateCartIngredients(ctx context.Context, userID string) ([]*model.ShoppingListItem, error) {
	query := `
		SELECT
			ingredient.name as name,
			ingredient.measurement_unit as measurement_unit,
			math::sum(amount) as amount
		FROM recipe_ingredient
		WHERE recipe IN (SELECT VALUE target FROM cart_item WHERE user = type::record($user_id))
		GROUP BY name, measurement_unit
		ORDER BY name ASC
	`
	vars := map[string]interface{}{"user_id": userID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	items := make([]*model.ShoppingListItem, 0)
	records, _ := extractQueryResults(result)
	for _, rec := range records {
		data, ok := rec.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, &model.ShoppingListItem{
			Name:            getString(data, "name"),
			MeasurementUnit: getString(data, "measurement_unit"),
			Amount:          getInt(data, "amount"),
		})
	}
	return items, nil
}

// Helper functions

func (r *RelationRepository) parseMembershipResult(result interface{}, kind model.RelationKind) (*model.Membership, error) {
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
		return nil, errors.New("unexpected result format")
	}

	membership := &model.Membership{
		Kind:      kind,
		CreatedOn: parseTime(data["created_on"]),
	}
	if id, ok := data["id"]; ok {
		membership.ID = convertSurrealID(id)
	}
	if user, ok := data["user"]; ok {
		membership.UserID = convertSurrealID(user)
	}
	if target, ok := data["target"]; ok {
		membership.TargetID = convertSurrealID(target)
	}

	return membership, nil
}
