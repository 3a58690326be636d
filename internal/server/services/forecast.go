package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/logging"
	"github.com/dmitrijs2005/agritrack/internal/server/forecast"
	"github.com/dmitrijs2005/agritrack/internal/server/models"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/repomanager"
)

type Predictor interface {
	Predict(ctx context.Context, c forecast.Commodity) (json.RawMessage, error)
}

type ForecastService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	predictor   Predictor
	log         logging.Logger
}

func NewForecastService(db *sql.DB, m repomanager.RepositoryManager, p Predictor, log logging.Logger) *ForecastService {
	return &ForecastService{db: db, repomanager: m, predictor: p, log: log.With("module", "forecast")}
}

func (s *ForecastService) Types(ctx context.Context) ([]models.CommodityType, error) {
	ts, err := s.repomanager.Commodities(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return ts, nil
}

// Predict validates label against the closed commodity set before any
// outbound call is made.
func (s *ForecastService) Predict(ctx context.Context, label string) (json.RawMessage, error) {
	c, err := forecast.ParseCommodity(label)
	if err != nil {
		return nil, err
	}

	data, err := s.predictor.Predict(ctx, c)
	if err != nil {
		s.log.Warn(ctx, "prediction failed", "commodity", c.String(), "error", err)
		return nil, err
	}
	return data, nil
}
