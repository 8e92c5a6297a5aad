package model

import "time"

// RelationKind identifies one of the three membership relations handled
// by the shared toggle algorithm.
type RelationKind string

const (
	RelationFavorite     RelationKind = "favorite"
	RelationCart         RelationKind = "cart"
	RelationSubscription RelationKind = "subscription"
)

// Membership is a stored membership row. For favorite and cart relations
// TargetID is a recipe id; for subscriptions it is the followed author's
// user id. Presence or absence is the only meaningful state.
type Membership struct {
	ID        string       `json:"id"`
	Kind      RelationKind `json:"kind"`
	UserID    string       `json:"user_id"`
	TargetID  string       `json:"target_id"`
	CreatedOn time.Time    `json:"created_on"`
}

// ShoppingListItem is one aggregated line of a shopping list: the summed
// amount of one ingredient across every recipe in the requester's cart,
// grouped by (name, measurement unit).
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}
