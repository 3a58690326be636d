package commodities

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.CommodityType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT commodity_type FROM commodity ORDER BY commodity_type`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.CommodityType, 0)
	for rows.Next() {
		var c models.CommodityType
		if err := rows.Scan(&c.CommodityType); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
