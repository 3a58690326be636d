package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/agritrack/internal/server/models"
)

type predictRequest struct {
	CommodityType string `json:"commodityType"`
}

type predictResponse struct {
	PredictionData json.RawMessage `json:"predictionData"`
}

type commoditiesResponse struct {
	Commodities []models.CommodityType `json:"commodities"`
}

func (s *Server) handleCommodityTypes(w http.ResponseWriter, r *http.Request) {
	ts, err := s.forecast.Types(r.Context())
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, commoditiesResponse{Commodities: ts})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in predictRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}

	data, err := s.forecast.Predict(r.Context(), in.CommodityType)
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, predictResponse{PredictionData: data})
}
