// Package images declares the repository contract for property image
// metadata. The image bytes themselves live in object storage.
package images

import (
	"context"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines persistence operations for image records.
type Repository interface {
	// Create inserts a new image record and returns it with the generated id.
	Create(ctx context.Context, img *models.Image) (*models.Image, error)

	// GetByID looks up an image record by its id.
	GetByID(ctx context.Context, id string) (*models.Image, error)

	// ListForProperty returns the property's images ordered by sort order.
	// With approvedOnly set, unapproved uploads are filtered out.
	ListForProperty(ctx context.Context, propertyID string, approvedOnly bool) ([]*models.Image, error)

	// ListForUploader returns every image uploaded by the user, newest first.
	ListForUploader(ctx context.Context, uploaderID string) ([]*models.Image, error)

	// ListPending returns all unapproved images, oldest first.
	ListPending(ctx context.Context) ([]*models.Image, error)

	// Approve marks an image as approved.
	Approve(ctx context.Context, id string) error

	// Delete removes an image record.
	Delete(ctx context.Context, id string) error
}
