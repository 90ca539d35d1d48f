// Package favorites declares the repository contract for saved properties.
package favorites

import (
	"context"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines persistence operations for favorites.
type Repository interface {
	// Add saves a property for the user. Re-adding an existing favorite is
	// a no-op success.
	Add(ctx context.Context, userID, propertyID string) (*models.Favorite, error)

	// Remove deletes the favorite. A missing row yields common.ErrorNotFound.
	Remove(ctx context.Context, userID, propertyID string) error

	// ListForUser returns a page of the user's favorites, newest first,
	// together with the total count.
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Favorite, int, error)
}
