package model

// Ingredient represents a catalog ingredient. The catalog is read-only
// for API clients; rows are loaded out of band.
type Ingredient struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	// Count is the unit multiplier: how many measurement units one
	// catalog entry stands for.
	Count int `json:"count"`
}
