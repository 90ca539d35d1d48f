package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
)

const imageColumns = `id, property_id, uploader_id, storage_key, url, description, sort_order, approved, created_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, img *models.Image) (*models.Image, error) {
	query := `
		INSERT INTO property_images (property_id, uploader_id, storage_key, url, description, sort_order, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		img.PropertyID, img.UploaderID, img.StorageKey, img.URL,
		img.Description, img.SortOrder, img.Approved).
		Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	return img, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM property_images WHERE id = $1`

	img := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&img.ID, &img.PropertyID, &img.UploaderID, &img.StorageKey, &img.URL,
			&img.Description, &img.SortOrder, &img.Approved, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) ListForProperty(ctx context.Context, propertyID string, approvedOnly bool) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM property_images WHERE property_id = $1`
	if approvedOnly {
		query += ` AND approved`
	}
	query += ` ORDER BY sort_order, created_at`

	return r.queryImages(ctx, query, propertyID)
}

func (r *PostgresRepository) ListForUploader(ctx context.Context, uploaderID string) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + `
		FROM property_images
		WHERE uploader_id = $1
		ORDER BY created_at DESC`

	return r.queryImages(ctx, query, uploaderID)
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]*models.Image, error) {
	query := `SELECT ` + imageColumns + `
		FROM property_images
		WHERE NOT approved
		ORDER BY created_at`

	return r.queryImages(ctx, query)
}

func (r *PostgresRepository) Approve(ctx context.Context, id string) error {
	query := `
		UPDATE property_images
		SET approved = true
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
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

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM property_images
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) queryImages(ctx context.Context, query string, args ...any) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Image
	for rows.Next() {
		img := &models.Image{}
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.UploaderID, &img.StorageKey,
			&img.URL, &img.Description, &img.SortOrder, &img.Approved, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
