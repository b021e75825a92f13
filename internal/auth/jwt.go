package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Vincent-mutwiri/Dorcas-cake-website-sub000/pkg/middleware"
)

// tokenClaims are the JWT claims issued by the identity provider for
// storefront access tokens.
type tokenClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewTokenValidator returns a TokenValidator that verifies HS256 access
// tokens signed with the given secret.
func NewTokenValidator(secret string) middleware.TokenValidator {
	key := []byte(secret)
	return func(tokenString string) (*middleware.Claims, error) {
		token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil {
			return nil, fmt.Errorf("parse access token: %w", err)
		}

		claims, ok := token.Claims.(*tokenClaims)
		if !ok || !token.Valid {
			return nil, fmt.Errorf("invalid access token claims")
		}

		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" {
			return nil, fmt.Errorf("access token carries no user id")
		}

		role := claims.Role
		if role == "" {
			role = middleware.RoleCustomer
		}

		return &middleware.Claims{
			UserID: userID,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   role,
		}, nil
	}
}
