// Package middleware provides HTTP middleware for the Platefeed API.
//
// The middleware package contains reusable middleware components for
// authentication, authorization, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - AuthMiddleware: JWT token validation and user extraction
//   - RateLimitMiddleware: Request rate limiting per user/IP
//   - IdempotencyMiddleware: Idempotent request handling
//   - AdminAuth: Role-gated access for administrative endpoints
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts user information:
//
//	mux.Handle("POST /v1/recipes", authMiddleware(handler))
//
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//
// # Rate Limiting
//
// Rate limiting protects against abuse:
//
//	handler = rateLimiter.Limit(handler)
//
// Configurable limits per endpoint and user tier.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): Returns authenticated user ID
//   - GetRequestID(ctx): Returns unique request identifier
package middleware
