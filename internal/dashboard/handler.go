// Package dashboard serves the read-only JSON the personal tab renders: the tool catalog
// and the active benefits.
package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/timebank/backend/internal/catalog"
	"github.com/timebank/backend/internal/models"
	"github.com/timebank/backend/internal/repository"
)

type Handler struct {
	catalog  *catalog.Catalog
	benefits repository.BenefitRepository
	log      *slog.Logger
}

func NewHandler(cat *catalog.Catalog, benefits repository.BenefitRepository, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{catalog: cat, benefits: benefits, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type toolsResponse struct {
	Tools            []models.Tool `json:"tools"`
	MinutesPerCredit int           `json:"minutes_per_credit"`
}

// GET /api/v1/tools
func (h *Handler) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toolsResponse{Tools: h.catalog.Tools(), MinutesPerCredit: models.MinutesPerCredit})
}

// GET /api/v1/benefits
func (h *Handler) ListBenefits(w http.ResponseWriter, r *http.Request) {
	list, err := h.benefits.ListActive(r.Context())
	if err != nil {
		h.log.Error("list benefits", "error", err)
		http.Error(w, `{"error":"failed to list benefits"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Benefit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"benefits": list})
}
