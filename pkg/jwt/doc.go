// Package jwt provides JSON Web Token utilities for the Platefeed API.
//
// The jwt package handles token signing, validation, and claims
// extraction for authentication using RS256.
//
// # Service Setup
//
// Create a service from RSA key files:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "api.platefeed.app",
//	    ExpirationMins: 15,
//	})
//
// # Token Signing
//
// Sign claims for authenticated users:
//
//	token, err := service.Sign(jwt.Claims{
//	    Subject: user.ID,
//	    UserID:  user.ID,
//	    Email:   user.Email,
//	})
//
// # Token Validation
//
// Validate and extract claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// # Claims
//
// Claims carry standard JWT fields plus application fields:
//
//	type Claims struct {
//	    Issuer    string
//	    Subject   string
//	    ExpiresAt int64
//	    IssuedAt  int64
//	    UserID    string
//	    Email     string
//	    Role      string
//	}
package jwt
