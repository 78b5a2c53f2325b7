package service

import (
	"fmt"

	"order-settlement/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenVerifier implements ports.TokenVerifier for HS256 tokens issued
// by the auth subsystem. This engine only validates; it never issues.
type JWTTokenVerifier struct {
	secret []byte
	issuer string
}

// NewJWTTokenVerifier creates a new JWT token verifier.
func NewJWTTokenVerifier(secret, issuer string) *JWTTokenVerifier {
	return &JWTTokenVerifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Validate parses and validates a JWT token, returning the claims.
func (s *JWTTokenVerifier) Validate(tokenString string) (*ports.TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("missing subject claim")
	}

	customerID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid customer ID in token: %w", err)
	}

	return &ports.TokenClaims{
		CustomerID: customerID,
	}, nil
}
