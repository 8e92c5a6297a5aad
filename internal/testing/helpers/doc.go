// Package helpers provides test utility functions for the Platefeed API.
//
// The helpers package contains common test utilities for assertions,
// pointer creation, and test data manipulation.
//
// # Pointer Helpers
//
// Create pointers to literal values:
//
//	name := helpers.StringPtr("test")
//	count := helpers.IntPtr(42)
//	flag := helpers.BoolPtr(true)
//
// # JWT Helpers
//
// Generate test JWT tokens:
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	token := jwtHelper.GenerateToken(user)
//	expired := jwtHelper.GenerateExpiredToken(user)
//
// # Assertion Helpers
//
// Common test assertions:
//
//	helpers.AssertRecordExists(t, db, "recipe", "123")
//	helpers.AssertRecordNotExists(t, db, "recipe", "456")
//
// # Request Building
//
// Build HTTP requests for handler tests:
//
//	req := helpers.NewRequest(t, "POST", "/v1/recipes").
//	    WithAuth(jwtHelper, user).
//	    WithBody(body).
//	    Build()
package helpers
