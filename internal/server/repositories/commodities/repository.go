// Package commodities reads the commodity lookup table used by the forecast
// endpoints.
package commodities

import (
	"context"

	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.CommodityType, error)
}
