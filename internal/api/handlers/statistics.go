package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

// StatisticsHandler serves the dashboard aggregates
type StatisticsHandler struct {
	store  pharmacy.Store
	logger *zap.Logger
}

// NewStatisticsHandler creates a new handler
func NewStatisticsHandler(store pharmacy.Store, logger *zap.Logger) *StatisticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsHandler{store: store, logger: logger}
}

// Get handles GET /statistics. The aggregates are always computed from
// current store contents, on either backend.
func (h *StatisticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedicines(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list medicines", err)
		return
	}

	prescriptions, err := h.store.ListPrescriptions(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list prescriptions", err)
		return
	}

	respondJSON(w, http.StatusOK, pharmacy.ComputeStatistics(meds, prescriptions))
}
