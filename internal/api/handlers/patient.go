package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

// PatientHandler handles patient endpoints
type PatientHandler struct {
	store  pharmacy.Store
	logger *zap.Logger
}

// NewPatientHandler creates a new handler
func NewPatientHandler(store pharmacy.Store, logger *zap.Logger) *PatientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PatientHandler{store: store, logger: logger}
}

// Routes returns the handler routes
func (h *PatientHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	return r
}

// List handles GET /patients
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.store.ListPatients(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list patients", err)
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

// Get handles GET /patients/{id}
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	patient, err := h.store.GetPatient(r.Context(), id)
	if err != nil {
		respondStoreError(w, h.logger, "get patient", err)
		return
	}
	respondJSON(w, http.StatusOK, patient)
}

// Create handles POST /patients
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pharmacy.NewPatient
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondValidation(w, []FieldError{{Field: "name", Message: "name is required"}})
		return
	}

	patient, err := h.store.CreatePatient(r.Context(), req)
	if err != nil {
		respondStoreError(w, h.logger, "create patient", err)
		return
	}

	h.logger.Info("patient created", zap.String("id", patient.ID))
	respondJSON(w, http.StatusCreated, patient)
}
