package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/scoring"
)

type CriteriaHandler struct {
	configs map[amenity.Category]scoring.StrategyConfig
}

func NewCriteriaHandler(configs map[amenity.Category]scoring.StrategyConfig) *CriteriaHandler {
	return &CriteriaHandler{configs: configs}
}

type CriterionInfo struct {
	Category    amenity.Category       `json:"category"`
	DisplayName string                 `json:"display_name"`
	Strategy    scoring.StrategyConfig `json:"strategy"`
}

// List returns every category in canonical order with its scoring config.
func (h *CriteriaHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := make([]CriterionInfo, 0, len(h.configs))
	for _, c := range amenity.Categories() {
		cfg, ok := h.configs[c]
		if !ok {
			continue
		}
		infos = append(infos, CriterionInfo{Category: c, DisplayName: c.DisplayName(), Strategy: cfg})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": infos,
		"min_rank": scoring.MinRank,
		"max_rank": scoring.MaxRank,
	})
}
