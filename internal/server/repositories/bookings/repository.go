// Package bookings declares the repository contract for visit bookings.
package bookings

import (
	"context"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines persistence operations for bookings.
type Repository interface {
	// Create inserts a new booking and returns it with the generated id.
	Create(ctx context.Context, b *models.Booking) (*models.Booking, error)

	// GetByID looks up a booking by its id.
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// ListForUser returns a page of the user's bookings, newest first,
	// together with the total count.
	ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Booking, int, error)

	// UpdateStatus moves a booking to the given status.
	UpdateStatus(ctx context.Context, id string, status string) error
}
