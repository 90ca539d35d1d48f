// Package refreshtokens provides the repository contract for managing
// refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines operations for issuing, consuming, and revoking
// refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of
	// now+validity and returns the persisted record.
	Create(ctx context.Context, userID string, token string, validity time.Duration) (*models.RefreshToken, error)

	// Consume atomically marks the row matching token as revoked, provided
	// it is not yet revoked and not yet expired, and returns it. When no
	// such row exists (unknown, already revoked, or expired token) it
	// returns common.ErrorNotFound. The conditional update guarantees that
	// concurrent calls on the same token value have exactly one winner.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// RevokeAllForUser marks every active token of the user as revoked.
	// A user with no active tokens is not an error.
	RevokeAllForUser(ctx context.Context, userID string) error
}
