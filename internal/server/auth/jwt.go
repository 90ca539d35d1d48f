// Package auth implements access token minting and validation for the
// Estately server. Access tokens are HS256 JWTs carrying the user id,
// profile claims, and role memberships; they are never persisted.
package auth

import (
	"errors"
	"time"

	"github.com/estately/estately/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the claim set embedded in every access token. Name and Email
// may be empty strings if the user never supplied them.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// TokenInput carries the identity fields stamped into a new access token.
type TokenInput struct {
	UserID string
	Name   string
	Email  string
	Roles  []string
}

// GenerateToken mints a signed HS256 access token. The jti claim is a fresh
// UUID so that two tokens minted for the same user in the same second still
// differ. One role claim entry is added per input role.
func GenerateToken(in TokenInput, secretKey []byte, issuer, audience string, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.UserID,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			ID:        uuid.NewString(),
		},
		Name:  in.Name,
		Email: in.Email,
		Roles: in.Roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken fully validates tokenString (signature, lifetime, issuer,
// audience) and returns its claims. This is the path the authorization
// middleware relies on.
func ParseToken(tokenString string, secretKey []byte, issuer, audience string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseExpiredToken checks the signature and signing algorithm only; the
// lifetime, issuer, and audience checks are deliberately skipped. It exists
// solely to extract the identity from an expired access token ahead of a
// refresh and must never back an authorization decision.
func ParseExpiredToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
