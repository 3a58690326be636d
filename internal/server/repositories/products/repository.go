// Package products stores product records and the product category lookup.
package products

import (
	"context"

	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Product) (*models.Product, error)
	Update(ctx context.Context, productID, owner string, patch models.ProductPatch) (*models.Product, error)
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
	Categories(ctx context.Context) ([]models.ProductCategory, error)
}
