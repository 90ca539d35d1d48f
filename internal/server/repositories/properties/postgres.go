package properties

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/estately/estately/internal/common"
	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/models"
)

const propertyColumns = `id, owner_id, title, description, price, area, bedrooms, bathrooms,
	property_type, location, address, main_image_url, features,
	is_for_rent, is_for_sale, is_available, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	query := `
		INSERT INTO properties (owner_id, title, description, price, area, bedrooms, bathrooms,
			property_type, location, address, main_image_url, features,
			is_for_rent, is_for_sale, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`
	features, err := json.Marshal(featuresOrEmpty(p.Features))
	if err != nil {
		return nil, fmt.Errorf("error encoding features: %v", err)
	}
	err = r.db.QueryRowContext(ctx, query,
		p.OwnerID, p.Title, p.Description, p.Price, p.Area, p.Bedrooms, p.Bathrooms,
		p.PropertyType, p.Location, p.Address, p.MainImageURL, features,
		p.IsForRent, p.IsForSale, p.IsAvailable).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	p, err := scanProperty(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, price = $4, area = $5, bedrooms = $6,
			bathrooms = $7, property_type = $8, location = $9, address = $10,
			main_image_url = $11, features = $12, is_for_rent = $13,
			is_for_sale = $14, is_available = $15, updated_at = now()
		WHERE id = $1
	`
	features, err := json.Marshal(featuresOrEmpty(p.Features))
	if err != nil {
		return fmt.Errorf("error encoding features: %v", err)
	}
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Description, p.Price, p.Area, p.Bedrooms,
		p.Bathrooms, p.PropertyType, p.Location, p.Address,
		p.MainImageURL, features, p.IsForRent, p.IsForSale, p.IsAvailable)
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
	query := `DELETE FROM properties WHERE id = $1`

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

func (r *PostgresRepository) List(ctx context.Context, f models.PropertyFilter) ([]*models.Property, int, error) {
	where, args := buildFilter(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM properties` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	query := `SELECT ` + propertyColumns + ` FROM properties` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return result, total, nil
}

// buildFilter turns the set filter fields into a WHERE clause with
// positional args. Zero values are skipped.
func buildFilter(f models.PropertyFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Location != "" {
		add("location ILIKE $%d", "%"+f.Location+"%")
	}
	if f.PropertyType != "" {
		add("property_type = $%d", f.PropertyType)
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if f.MinBedrooms > 0 {
		add("bedrooms >= $%d", f.MinBedrooms)
	}
	if f.ForRent != nil {
		add("is_for_rent = $%d", *f.ForRent)
	}
	if f.ForSale != nil {
		add("is_for_sale = $%d", *f.ForSale)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*models.Property, error) {
	p := &models.Property{}
	var features []byte
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Price, &p.Area,
		&p.Bedrooms, &p.Bathrooms, &p.PropertyType, &p.Location, &p.Address,
		&p.MainImageURL, &features, &p.IsForRent, &p.IsForSale, &p.IsAvailable,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("error decoding features: %v", err)
		}
	}
	return p, nil
}

func featuresOrEmpty(features []string) []string {
	if features == nil {
		return []string{}
	}
	return features
}
