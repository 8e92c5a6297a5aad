// Package tests contains end-to-end acceptance tests for the Platefeed API.
//
// These tests run against a real SurrealDB instance to validate actual
// database behavior including constraints and unique indexes.
//
// To run tests:
//  1. Start SurrealDB: surreal start memory -A --user root --pass root
//  2. Run tests: go test ./tests/...
//
// Environment variables:
//
//	TEST_DB_HOST     - SurrealDB host (default: localhost)
//	TEST_DB_PORT     - SurrealDB port (default: 8000)
//	TEST_DB_USER     - SurrealDB username (default: root)
//	TEST_DB_PASSWORD - SurrealDB password (default: root)
package tests

import (
	"testing"

	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/testing/fixtures"
	"github.com/platefeed/api/internal/testing/helpers"
	"github.com/platefeed/api/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Test Infrastructure Smoke Test
DOMAIN: Infrastructure

ACCEPTANCE CRITERIA:
===================

AC-SMOKE-001: Database Connection
  GIVEN SurrealDB is running
  WHEN we create a test database
  THEN the connection succeeds
  AND migrations are applied

AC-SMOKE-002: Fixture Creation
  GIVEN a test database
  WHEN we create user, tag, ingredient and recipe fixtures
  THEN the records exist in the database

AC-SMOKE-003: Helper Functions
  GIVEN test helper utilities
  WHEN we use JWT and pointer helpers
  THEN they function correctly
*/

func TestSmoke_DatabaseConnection(t *testing.T) {
	// AC-SMOKE-001: Database Connection
	tdb := testdb.New(t)
	defer tdb.Close()

	results := tdb.MustQuery("INFO FOR DB", nil)
	require.NotEmpty(t, results)
}

func TestSmoke_Fixtures(t *testing.T) {
	// AC-SMOKE-002: Fixture Creation
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)

	user := f.CreateUser(t)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.UserRoleUser, user.Role)
	helpers.AssertRecordExists(t, tdb.DB, "user", user.ID)

	admin := f.CreateAdmin(t)
	assert.Equal(t, model.UserRoleAdmin, admin.Role)

	tag := f.CreateTag(t)
	assert.NotEmpty(t, tag.ID)
	assert.NotEmpty(t, tag.Slug)

	ingredient := f.CreateIngredient(t, fixtures.WithIngredient("Salt", "g"))
	assert.Equal(t, "Salt", ingredient.Name)
	assert.Equal(t, "g", ingredient.MeasurementUnit)

	recipe := f.CreateRecipe(t, user)
	assert.NotEmpty(t, recipe.ID)
	helpers.AssertRecordExists(t, tdb.DB, "recipe", recipe.ID)

	f.LinkTag(t, recipe, tag)
	f.LinkIngredient(t, recipe, ingredient, 5)
}

func TestSmoke_Helpers(t *testing.T) {
	// AC-SMOKE-003: Helper Functions
	jwtHelper := helpers.NewJWTHelper(t)

	user := &model.User{
		ID:       "user:smoke",
		Email:    "smoke@test.local",
		Username: "smoke",
		Role:     model.UserRoleUser,
	}

	token := jwtHelper.GenerateToken(user)
	assert.NotEmpty(t, token)

	expired := jwtHelper.GenerateExpiredToken(user)
	assert.NotEmpty(t, expired)
	assert.NotEqual(t, token, expired)

	assert.Equal(t, "test", *helpers.StringPtr("test"))
	assert.Equal(t, 42, *helpers.IntPtr(42))
	assert.True(t, *helpers.BoolPtr(true))
}
