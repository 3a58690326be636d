package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

const productColumns = `product_id, product_name, product_origin, product_category,
		product_composition, nutrition_facts, owner, image, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	p := &models.Product{}
	err := s.Scan(&p.ProductID, &p.ProductName, &p.ProductOrigin, &p.ProductCategory,
		&p.ProductComposition, &p.NutritionFacts, &p.Owner, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts p. A duplicate product id yields common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (product_id, product_name, product_origin, product_category,
			product_composition, nutrition_facts, owner, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ProductID, p.ProductName, p.ProductOrigin, p.ProductCategory,
		p.ProductComposition, p.NutritionFacts, p.Owner, p.ImageURL,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update applies patch to the product owned by owner. Owner and image are
// never modified. A missing row, or one owned by someone else, yields
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, productID, owner string, patch models.ProductPatch) (*models.Product, error) {
	query := `
		UPDATE products SET
			product_name = COALESCE($3, product_name),
			product_origin = COALESCE($4, product_origin),
			product_category = COALESCE($5, product_category),
			product_composition = COALESCE($6, product_composition),
			nutrition_facts = COALESCE($7, nutrition_facts),
			updated_at = now()
		WHERE product_id = $1 AND owner = $2
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query, productID, owner,
		patch.ProductName, patch.ProductOrigin, patch.ProductCategory,
		patch.ProductComposition, patch.NutritionFacts)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at, product_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]models.ProductCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_name FROM product_categories ORDER BY category_name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.ProductCategory, 0)
	for rows.Next() {
		var c models.ProductCategory
		if err := rows.Scan(&c.CategoryName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
