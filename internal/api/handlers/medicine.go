package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
	"github.com/openpharm/go-pims/internal/observability/metrics"
)

// MedicineHandler handles medicine endpoints
type MedicineHandler struct {
	store   pharmacy.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewMedicineHandler creates a new handler
func NewMedicineHandler(store pharmacy.Store, logger *zap.Logger, m *metrics.Metrics) *MedicineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &MedicineHandler{store: store, logger: logger, metrics: m}
}

// Routes returns the handler routes
func (h *MedicineHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /medicines
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	meds, err := h.store.ListMedicines(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list medicines", err)
		return
	}
	respondJSON(w, http.StatusOK, meds)
}

// Search handles GET /medicines/search?q=
func (h *MedicineHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	meds, err := h.store.SearchMedicinesByName(r.Context(), term)
	if err != nil {
		respondStoreError(w, h.logger, "search medicines", err)
		return
	}
	h.metrics.MedicineSearches.Inc()
	respondJSON(w, http.StatusOK, meds)
}

// Get handles GET /medicines/{id}
func (h *MedicineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	med, err := h.store.GetMedicine(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, "get medicine", err)
		return
	}
	respondJSON(w, http.StatusOK, med)
}

// Create handles POST /medicines
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pharmacy.NewMedicine
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateNewMedicine(req); len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	med, err := h.store.CreateMedicine(r.Context(), req)
	if err != nil {
		respondStoreError(w, h.logger, "create medicine", err)
		return
	}

	h.metrics.MedicinesCreated.Inc()
	h.logger.Info("medicine created", zap.String("id", med.ID), zap.String("name", med.Name))
	respondJSON(w, http.StatusCreated, med)
}

// Update handles PATCH /medicines/{id}
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req pharmacy.MedicineUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateMedicineUpdate(req); len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	med, err := h.store.UpdateMedicine(r.Context(), id, req)
	if err != nil {
		respondStoreError(w, h.logger, "update medicine", err)
		return
	}

	h.metrics.MedicinesUpdated.Inc()
	respondJSON(w, http.StatusOK, med)
}

// Delete handles DELETE /medicines/{id}
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.store.DeleteMedicine(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, "delete medicine", err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "resource not found")
		return
	}

	h.metrics.MedicinesDeleted.Inc()
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func validateNewMedicine(m pharmacy.NewMedicine) []FieldError {
	var fields []FieldError
	if strings.TrimSpace(m.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name is required"})
	}
	if strings.TrimSpace(m.Unit) == "" {
		fields = append(fields, FieldError{Field: "unit", Message: "unit is required"})
	}
	if m.StockQuantity < 0 {
		fields = append(fields, FieldError{Field: "stock_quantity", Message: "must not be negative"})
	}
	if m.ReorderQuantity < 0 {
		fields = append(fields, FieldError{Field: "reorder_quantity", Message: "must not be negative"})
	}
	if m.PurchasePrice < 0 {
		fields = append(fields, FieldError{Field: "purchase_price", Message: "must not be negative"})
	}
	if m.SalePrice < 0 {
		fields = append(fields, FieldError{Field: "sale_price", Message: "must not be negative"})
	}
	return fields
}

func validateMedicineUpdate(m pharmacy.MedicineUpdate) []FieldError {
	var fields []FieldError
	if m.Name != nil && strings.TrimSpace(*m.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Message: "name must not be empty"})
	}
	if m.Unit != nil && strings.TrimSpace(*m.Unit) == "" {
		fields = append(fields, FieldError{Field: "unit", Message: "unit must not be empty"})
	}
	if m.StockQuantity != nil && *m.StockQuantity < 0 {
		fields = append(fields, FieldError{Field: "stock_quantity", Message: "must not be negative"})
	}
	if m.ReorderQuantity != nil && *m.ReorderQuantity < 0 {
		fields = append(fields, FieldError{Field: "reorder_quantity", Message: "must not be negative"})
	}
	if m.PurchasePrice != nil && *m.PurchasePrice < 0 {
		fields = append(fields, FieldError{Field: "purchase_price", Message: "must not be negative"})
	}
	if m.SalePrice != nil && *m.SalePrice < 0 {
		fields = append(fields, FieldError{Field: "sale_price", Message: "must not be negative"})
	}
	return fields
}
