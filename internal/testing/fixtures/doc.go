// Package fixtures provides test data factories for the Platefeed API.
//
// The fixtures package contains factory functions for creating test data
// with sensible defaults and optional customization.
//
// # Factory Pattern
//
// Create a factory with a database connection:
//
//	f := fixtures.New(testDB)
//
// # Creating Test Data
//
// Factory methods create domain entities:
//
//	user := f.CreateUser(t)                  // Default user
//	tag := f.CreateTag(t)                    // Default tag
//	recipe := f.CreateRecipe(t, user)        // Recipe authored by user
//	f.LinkIngredient(t, recipe, salt, 5)     // Ingredient line
//	f.AddToCart(t, user, recipe)             // Cart membership
//
// # Customization
//
// Use option functions for customization:
//
//	salt := f.CreateIngredient(t, WithIngredient("Salt", "g"))
//	user := f.CreateUser(t, func(o *UserOpts) { o.Username = "alice" })
//
// # Random Data
//
// Unique identifiers are generated automatically:
//
//	user1 := f.CreateUser(t) // user_abc123
//	user2 := f.CreateUser(t) // user_def456
//
// # Cleanup
//
// Test data is cleaned up when the test database is closed.
package fixtures
