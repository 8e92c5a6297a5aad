// Package config manages application configuration for the Platefeed API.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: JWT signing and validation settings
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT          - HTTP server port (default: 8080)
//	DB_HOST              - SurrealDB host
//	DB_PORT              - SurrealDB port
//	DB_NAMESPACE         - Database namespace
//	DB_DATABASE          - Database name
//	DB_USER              - Database username
//	DB_PASSWORD          - Database password
//	JWT_PRIVATE_KEY_PATH - RSA private key for token signing
//	JWT_PUBLIC_KEY_PATH  - RSA public key for token validation
//	JWT_ISSUER           - Token issuer claim
//
// # Default Values
//
// Sensible defaults are provided for development:
//
//	func getEnv(key, defaultValue string) string {
//	    if value := os.Getenv(key); value != "" {
//	        return value
//	    }
//	    return defaultValue
//	}
package config
