package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
	"github.com/openpharm/go-pims/internal/observability/metrics"
)

// PrescriptionHandler handles prescription endpoints
type PrescriptionHandler struct {
	store   pharmacy.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPrescriptionHandler creates a new handler
func NewPrescriptionHandler(store pharmacy.Store, logger *zap.Logger, m *metrics.Metrics) *PrescriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &PrescriptionHandler{store: store, logger: logger, metrics: m}
}

// Routes returns the handler routes
func (h *PrescriptionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Get("/{id}/lines", h.ListLines)
	r.Post("/{id}/lines", h.AddLine)
	r.Patch("/{id}/status", h.UpdateStatus)
	return r
}

// List handles GET /prescriptions
func (h *PrescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.store.ListPrescriptions(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list prescriptions", err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// Get handles GET /prescriptions/{id}
func (h *PrescriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.store.GetPrescription(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, "get prescription", err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Create handles POST /prescriptions
func (h *PrescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pharmacy.NewPrescription
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.PatientID) == "" {
		respondValidation(w, []FieldError{{Field: "patient_id", Message: "patient_id is required"}})
		return
	}

	p, err := h.store.CreatePrescription(r.Context(), req)
	if err != nil {
		respondStoreError(w, h.logger, "create prescription", err)
		return
	}

	h.logger.Info("prescription created",
		zap.String("id", p.ID),
		zap.String("patient_id", p.PatientID),
	)
	respondJSON(w, http.StatusCreated, p)
}

// ListLines handles GET /prescriptions/{id}/lines
func (h *PrescriptionHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.store.GetPrescription(r.Context(), id); err != nil {
		respondStoreError(w, h.logger, "get prescription", err)
		return
	}

	lines, err := h.store.ListPrescriptionLines(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, "list prescription lines", err)
		return
	}
	respondJSON(w, http.StatusOK, lines)
}

// AddLine handles POST /prescriptions/{id}/lines
func (h *PrescriptionHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// 404 before accepting a line for a prescription that does not exist.
	if _, err := h.store.GetPrescription(r.Context(), id); err != nil {
		respondStoreError(w, h.logger, "get prescription", err)
		return
	}

	var req pharmacy.NewPrescriptionLine
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.PrescriptionID = id

	if fields := validateNewLine(req); len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	line, err := h.store.CreatePrescriptionLine(r.Context(), req)
	if err != nil {
		respondStoreError(w, h.logger, "create prescription line", err)
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

// StatusRequest is the request body for a status update
type StatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /prescriptions/{id}/status
func (h *PrescriptionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		respondValidation(w, []FieldError{{Field: "status", Message: "status is required"}})
		return
	}

	p, err := h.store.UpdatePrescriptionStatus(r.Context(), id, req.Status)
	if err != nil {
		respondStoreError(w, h.logger, "update prescription status", err)
		return
	}

	h.metrics.PrescriptionsServed.Inc()
	h.logger.Info("prescription status updated",
		zap.String("id", id),
		zap.String("status", req.Status),
	)
	respondJSON(w, http.StatusOK, p)
}

func validateNewLine(l pharmacy.NewPrescriptionLine) []FieldError {
	var fields []FieldError
	if strings.TrimSpace(l.MedicineID) == "" {
		fields = append(fields, FieldError{Field: "medicine_id", Message: "medicine_id is required"})
	}
	if l.DosesPerDay < 0 {
		fields = append(fields, FieldError{Field: "doses_per_day", Message: "must not be negative"})
	}
	if l.QuantityPerDose < 0 {
		fields = append(fields, FieldError{Field: "quantity_per_dose", Message: "must not be negative"})
	}
	if l.TotalQuantity < 0 {
		fields = append(fields, FieldError{Field: "total_quantity", Message: "must not be negative"})
	}
	return fields
}
