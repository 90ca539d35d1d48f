// Package services contains server-side business logic. This file implements
// TokenService, the authentication core: it mints HS256 access tokens,
// issues and rotates persisted refresh tokens, and revokes sessions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/auth"
	"github.com/estately/estately/internal/server/config"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// refreshTokenBytes is the raw entropy of each refresh token value
// (512 bits, base64-encoded before storage).
const refreshTokenBytes = 64

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthResult is what a successful login, registration, or refresh returns:
// the new token pair plus the public profile of the authenticated user.
type AuthResult struct {
	TokenPair
	User *models.User
}

// TokenService provides token-related operations:
// - GenerateAccessToken: mint signed access tokens
// - IssueRefreshToken: mint and persist opaque refresh tokens
// - Refresh: rotate a refresh token and mint a new pair
// - RevokeAll: logout-everywhere
type TokenService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	issuer                       string
	audience                     string
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService using repositories and server
// config. An empty signing secret is a configuration error and fails here,
// at startup, rather than on the first request.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*TokenService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("token service: signing secret is not configured")
	}
	return &TokenService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		issuer:                       cfg.JWTIssuer,
		audience:                     cfg.JWTAudience,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}, nil
}

// GenerateAccessToken mints a signed access token for the user with one role
// claim per assigned role. Pure apart from reading the clock.
func (s *TokenService) GenerateAccessToken(user *models.User, roles []string) (string, error) {
	return auth.GenerateToken(auth.TokenInput{
		UserID: user.ID,
		Name:   user.FullName,
		Email:  user.Email,
		Roles:  roles,
	}, s.jwtSecret, s.issuer, s.audience, s.accessTokenValidityDuration)
}

// IssueRefreshToken generates a fresh opaque token value and persists it for
// the user. Returns the full persisted record.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID string) (*models.RefreshToken, error) {
	value, err := common.MakeRandBase64String(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	repo := s.repomanager.RefreshTokens(s.db)
	rt, err := repo.Create(ctx, userID, value, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %v", err)
	}
	return rt, nil
}

// ParseExpiredAccessToken extracts claims from an access token checking the
// signature and algorithm only; expiry, issuer, and audience are not
// enforced. It exists as a precursor step before a refresh and must never
// be used as an authorization check.
func (s *TokenService) ParseExpiredAccessToken(tokenString string) (*auth.Claims, error) {
	return auth.ParseExpiredToken(tokenString, s.jwtSecret)
}

// ValidateAccessToken fully validates an access token (signature, lifetime,
// issuer, audience) and returns its claims. This is the path the HTTP
// middleware uses.
func (s *TokenService) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	return auth.ParseToken(tokenString, s.jwtSecret, s.issuer, s.audience)
}

// Refresh redeems a refresh token: the consumed record is marked revoked and
// a brand-new pair is minted, all in one transaction. An unknown, revoked,
// or expired token yields common.ErrorNotFound, as does a token whose owner
// no longer exists; the caller maps that to an authentication failure.
// Concurrent calls on the same token value have exactly one winner and the
// losers see common.ErrorNotFound.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	var result *AuthResult

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		consumed, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			return err
		}

		userRepo := s.repomanager.Users(tx)
		user, err := userRepo.GetByID(ctx, consumed.UserID)
		if err != nil {
			// Orphaned token: the user was deleted after issuance.
			return err
		}
		roles, err := userRepo.GetRoles(ctx, user.ID)
		if err != nil {
			return err
		}

		pair, err := s.issueTokenPair(ctx, tx, user, roles)
		if err != nil {
			return err
		}

		result = &AuthResult{TokenPair: *pair, User: user}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return result, nil
}

// RevokeAll marks every active refresh token of the user as revoked
// (logout-everywhere). A user with no active tokens is a no-op.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.repomanager.RefreshTokens(s.db).RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("error revoking refresh tokens: %v", err)
	}
	return nil
}

// issueTokenPair mints an access token and a persisted refresh token against
// the given handle (plain connection or transaction).
func (s *TokenService) issueTokenPair(ctx context.Context, tx dbx.DBTX, user *models.User, roles []string) (*TokenPair, error) {
	access, err := s.GenerateAccessToken(user, roles)
	if err != nil {
		return nil, common.ErrorInternal
	}

	value, err := common.MakeRandBase64String(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	rt, err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, value, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %v", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: rt.Token,
		ExpiresAt:    time.Now().Add(s.accessTokenValidityDuration),
	}, nil
}
