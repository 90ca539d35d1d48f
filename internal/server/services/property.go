package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// AdminRole grants moderation rights over other users' listings.
const AdminRole = "admin"

// PropertyService implements listing management: publishing, editing,
// removing, and searching properties.
type PropertyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPropertyService(db *sql.DB, m repomanager.RepositoryManager) *PropertyService {
	return &PropertyService{db: db, repomanager: m}
}

// Create publishes a new listing owned by ownerID.
func (s *PropertyService) Create(ctx context.Context, ownerID string, p *models.Property) (*models.Property, error) {
	if err := validateProperty(p); err != nil {
		return nil, err
	}
	p.OwnerID = ownerID
	created, err := s.repomanager.Properties(s.db).Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error creating property: %v", err)
	}
	return created, nil
}

// Get returns a single listing by id.
func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	return s.repomanager.Properties(s.db).GetByID(ctx, id)
}

// Update edits a listing. Only the owner or an admin may edit; everyone else
// gets common.ErrorForbidden.
func (s *PropertyService) Update(ctx context.Context, actorID string, actorRoles []string, p *models.Property) (*models.Property, error) {
	repo := s.repomanager.Properties(s.db)

	existing, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnerOrAdmin(existing.OwnerID, actorID, actorRoles); err != nil {
		return nil, err
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	p.OwnerID = existing.OwnerID
	if err := repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("error updating property: %v", err)
	}
	return repo.GetByID(ctx, p.ID)
}

// Delete removes a listing. Only the owner or an admin may delete.
func (s *PropertyService) Delete(ctx context.Context, actorID string, actorRoles []string, id string) error {
	repo := s.repomanager.Properties(s.db)

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwnerOrAdmin(existing.OwnerID, actorID, actorRoles); err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}

// List searches listings with the given filter and returns a page plus the
// total match count.
func (s *PropertyService) List(ctx context.Context, filter models.PropertyFilter) ([]*models.Property, int, error) {
	filter.Normalize()
	if filter.PropertyType != "" && !models.ValidPropertyType(filter.PropertyType) {
		return nil, 0, fmt.Errorf("%w: unknown property type %q", common.ErrorValidation, filter.PropertyType)
	}
	return s.repomanager.Properties(s.db).List(ctx, filter)
}

func validateProperty(p *models.Property) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if !models.ValidPropertyType(p.PropertyType) {
		return fmt.Errorf("%w: unknown property type %q", common.ErrorValidation, p.PropertyType)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", common.ErrorValidation)
	}
	if !p.IsForRent && !p.IsForSale {
		return fmt.Errorf("%w: a listing must be for rent, for sale, or both", common.ErrorValidation)
	}
	return nil
}

func requireOwnerOrAdmin(ownerID string, actorID string, actorRoles []string) error {
	if ownerID == actorID || slices.Contains(actorRoles, AdminRole) {
		return nil
	}
	return common.ErrorForbidden
}

func requireAdmin(actorRoles []string) error {
	if slices.Contains(actorRoles, AdminRole) {
		return nil
	}
	return common.ErrorForbidden
}
