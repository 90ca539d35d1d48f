// Package properties declares the repository contract for property listings.
package properties

import (
	"context"

	"github.com/estately/estately/internal/server/models"
)

// Repository defines persistence operations for properties.
type Repository interface {
	// Create inserts a new property and returns it with the generated id.
	Create(ctx context.Context, p *models.Property) (*models.Property, error)

	// GetByID looks up a property by its id.
	GetByID(ctx context.Context, id string) (*models.Property, error)

	// Update replaces the mutable fields of an existing property.
	Update(ctx context.Context, p *models.Property) error

	// Delete removes a property. Missing rows yield common.ErrorNotFound.
	Delete(ctx context.Context, id string) error

	// List returns a page of properties matching the filter, newest first,
	// together with the total match count.
	List(ctx context.Context, f models.PropertyFilter) ([]*models.Property, int, error)
}
