package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts the favorite or, if it already exists, returns the existing
// row. ON CONFLICT DO NOTHING plus a follow-up select keeps the operation
// idempotent without racing.
func (r *PostgresRepository) Add(ctx context.Context, userID, propertyID string) (*models.Favorite, error) {
	query := `
		INSERT INTO favorites (user_id, property_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, property_id) DO NOTHING
		RETURNING id, added_at
	`
	fav := &models.Favorite{UserID: userID, PropertyID: propertyID}
	err := r.db.QueryRowContext(ctx, query, userID, propertyID).
		Scan(&fav.ID, &fav.AddedAt)
	if err == nil {
		return fav, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	// Conflict path: the favorite already exists.
	existing := `
		SELECT id, added_at FROM favorites
		WHERE user_id = $1 AND property_id = $2
	`
	err = r.db.QueryRowContext(ctx, existing, userID, propertyID).
		Scan(&fav.ID, &fav.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fav, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, propertyID string) error {
	query := `
		DELETE FROM favorites
		WHERE user_id = $1 AND property_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, propertyID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]*models.Favorite, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := `
		SELECT id, user_id, property_id, added_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY added_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Favorite
	for rows.Next() {
		f := &models.Favorite{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.PropertyID, &f.AddedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}
