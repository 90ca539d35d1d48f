package services

import (
	"context"
	"database/sql"

	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
	"github.com/estately/estately/internal/server/repositories/repomanager"
)

// FavoriteService lets users save listings for later. Adding twice is
// idempotent; removing a favorite that is not there yields
// common.ErrorNotFound.
type FavoriteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFavoriteService(db *sql.DB, m repomanager.RepositoryManager) *FavoriteService {
	return &FavoriteService{db: db, repomanager: m}
}

// Add saves the property for the user after checking the listing exists.
func (s *FavoriteService) Add(ctx context.Context, userID, propertyID string) (*models.Favorite, error) {
	var fav *models.Favorite

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Properties(tx).GetByID(ctx, propertyID); err != nil {
			return err
		}
		var err error
		fav, err = s.repomanager.Favorites(tx).Add(ctx, userID, propertyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove drops the property from the user's favorites.
func (s *FavoriteService) Remove(ctx context.Context, userID, propertyID string) error {
	return s.repomanager.Favorites(s.db).Remove(ctx, userID, propertyID)
}

// List returns a page of the user's favorites with the total count.
func (s *FavoriteService) List(ctx context.Context, userID string, page, pageSize int) ([]*models.Favorite, int, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repomanager.Favorites(s.db).ListForUser(ctx, userID, page, pageSize)
}
