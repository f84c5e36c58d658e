// Package memory provides the in-memory entity store. It implements the full
// persistence contract from process memory so the application stays usable
// when no database is reachable. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

// Store keeps every entity in a map keyed by id. A single RWMutex guards all
// maps; there is no cross-operation transaction, matching the contract.
type Store struct {
	mu                sync.RWMutex
	medicines         map[string]pharmacy.Medicine
	patients          map[string]pharmacy.Patient
	prescriptions     map[string]pharmacy.Prescription
	prescriptionLines map[string]pharmacy.PrescriptionLine
	logger            *zap.Logger
}

// NewStore creates an entity store seeded with the sample catalog.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		medicines:         make(map[string]pharmacy.Medicine),
		patients:          make(map[string]pharmacy.Patient),
		prescriptions:     make(map[string]pharmacy.Prescription),
		prescriptionLines: make(map[string]pharmacy.PrescriptionLine),
		logger:            logger,
	}
	s.seed()
	return s
}

// seed installs the demo catalog used when running without a database.
func (s *Store) seed() {
	now := time.Now().UTC()
	samples := []pharmacy.Medicine{
		{
			ID:                    uuid.New().String(),
			Name:                  "Paracetamol 500mg",
			Unit:                  "tablet",
			StockQuantity:         100,
			ReorderQuantity:       50,
			PurchasePrice:         200,
			SalePrice:             500,
			RouteOfAdministration: pharmacy.DefaultRoute,
			CreatedAt:             now,
		},
		{
			ID:                    uuid.New().String(),
			Name:                  "Amoxicillin 250mg",
			Unit:                  "tablet",
			StockQuantity:         75,
			ReorderQuantity:       25,
			PurchasePrice:         300,
			SalePrice:             800,
			RouteOfAdministration: pharmacy.DefaultRoute,
			CreatedAt:             now,
		},
	}
	for _, m := range samples {
		s.medicines[m.ID] = m
	}
	s.logger.Info("seeded in-memory catalog", zap.Int("medicines", len(samples)))
}

func (s *Store) ListMedicines(ctx context.Context) ([]pharmacy.Medicine, error) {
	s.mu.RLock()
	meds := make([]pharmacy.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		meds = append(meds, m)
	}
	s.mu.RUnlock()

	pharmacy.SortMedicinesByName(meds)
	return meds, nil
}

func (s *Store) GetMedicine(ctx context.Context, id string) (*pharmacy.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.medicines[id]
	if !ok {
		return nil, pharmacy.ErrNotFound
	}
	return &m, nil
}

func (s *Store) SearchMedicinesByName(ctx context.Context, term string) ([]pharmacy.Medicine, error) {
	s.mu.RLock()
	meds := make([]pharmacy.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		meds = append(meds, m)
	}
	s.mu.RUnlock()

	return pharmacy.RankByName(meds, term), nil
}

func (s *Store) CreateMedicine(ctx context.Context, in pharmacy.NewMedicine) (*pharmacy.Medicine, error) {
	m := pharmacy.Medicine{
		ID:                    uuid.New().String(),
		Name:                  in.Name,
		Unit:                  in.Unit,
		StockQuantity:         in.StockQuantity,
		ReorderQuantity:       in.ReorderQuantity,
		PurchasePrice:         in.PurchasePrice,
		SalePrice:             in.SalePrice,
		RouteOfAdministration: in.RouteOfAdministration,
		CreatedAt:             time.Now().UTC(),
	}
	if m.RouteOfAdministration == "" {
		m.RouteOfAdministration = pharmacy.DefaultRoute
	}

	s.mu.Lock()
	s.medicines[m.ID] = m
	s.mu.Unlock()

	return &m, nil
}

func (s *Store) UpdateMedicine(ctx context.Context, id string, upd pharmacy.MedicineUpdate) (*pharmacy.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.medicines[id]
	if !ok {
		return nil, pharmacy.ErrNotFound
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Unit != nil {
		m.Unit = *upd.Unit
	}
	if upd.StockQuantity != nil {
		m.StockQuantity = *upd.StockQuantity
	}
	if upd.ReorderQuantity != nil {
		m.ReorderQuantity = *upd.ReorderQuantity
	}
	if upd.PurchasePrice != nil {
		m.PurchasePrice = *upd.PurchasePrice
	}
	if upd.SalePrice != nil {
		m.SalePrice = *upd.SalePrice
	}
	if upd.RouteOfAdministration != nil {
		m.RouteOfAdministration = *upd.RouteOfAdministration
	}
	s.medicines[id] = m
	return &m, nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.medicines[id]; !ok {
		return false, nil
	}
	delete(s.medicines, id)
	return true, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]pharmacy.Patient, error) {
	s.mu.RLock()
	patients := make([]pharmacy.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		patients = append(patients, p)
	}
	s.mu.RUnlock()

	pharmacy.SortPatientsByName(patients)
	return patients, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*pharmacy.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, pharmacy.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreatePatient(ctx context.Context, in pharmacy.NewPatient) (*pharmacy.Patient, error) {
	p := pharmacy.Patient{
		ID:        uuid.New().String(),
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.patients[p.ID] = p
	s.mu.Unlock()

	return &p, nil
}

func (s *Store) ListPrescriptions(ctx context.Context) ([]pharmacy.PrescriptionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	details := make([]pharmacy.PrescriptionDetail, 0, len(s.prescriptions))
	for _, p := range s.prescriptions {
		details = append(details, s.detailLocked(p))
	}
	sortPrescriptionsNewestFirst(details)
	return details, nil
}

func (s *Store) GetPrescription(ctx context.Context, id string) (*pharmacy.PrescriptionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prescriptions[id]
	if !ok {
		return nil, pharmacy.ErrNotFound
	}
	d := s.detailLocked(p)
	return &d, nil
}

// detailLocked joins a prescription with its patient name and line items.
// Callers must hold at least the read lock.
func (s *Store) detailLocked(p pharmacy.Prescription) pharmacy.PrescriptionDetail {
	d := pharmacy.PrescriptionDetail{
		Prescription: p,
		PatientName:  "Unknown",
		Lines:        s.linesLocked(p.ID),
	}
	if patient, ok := s.patients[p.PatientID]; ok {
		d.PatientName = patient.Name
	}
	return d
}

func (s *Store) linesLocked(prescriptionID string) []pharmacy.PrescriptionLineDetail {
	lines := make([]pharmacy.PrescriptionLineDetail, 0)
	for _, l := range s.prescriptionLines {
		if l.PrescriptionID != prescriptionID {
			continue
		}
		detail := pharmacy.PrescriptionLineDetail{
			PrescriptionLine: l,
			MedicineName:     "Unknown",
			MedicineUnit:     "Unknown",
		}
		if m, ok := s.medicines[l.MedicineID]; ok {
			detail.MedicineName = m.Name
			detail.MedicineUnit = m.Unit
		}
		lines = append(lines, detail)
	}
	sortLinesOldestFirst(lines)
	return lines
}

func (s *Store) CreatePrescription(ctx context.Context, in pharmacy.NewPrescription) (*pharmacy.Prescription, error) {
	p := pharmacy.Prescription{
		ID:         uuid.New().String(),
		PatientID:  in.PatientID,
		ExamID:     in.ExamID,
		DateIssued: in.DateIssued,
		Diagnosis:  in.Diagnosis,
		DoctorName: in.DoctorName,
		Status:     in.Status,
		CreatedAt:  time.Now().UTC(),
	}
	if p.Status == "" {
		p.Status = pharmacy.StatusPending
	}

	s.mu.Lock()
	s.prescriptions[p.ID] = p
	s.mu.Unlock()

	return &p, nil
}

func (s *Store) UpdatePrescriptionStatus(ctx context.Context, id, status string) (*pharmacy.Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prescriptions[id]
	if !ok {
		return nil, pharmacy.ErrNotFound
	}
	p.Status = status
	s.prescriptions[id] = p
	return &p, nil
}

func (s *Store) ListPrescriptionLines(ctx context.Context, prescriptionID string) ([]pharmacy.PrescriptionLineDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linesLocked(prescriptionID), nil
}

func (s *Store) CreatePrescriptionLine(ctx context.Context, in pharmacy.NewPrescriptionLine) (*pharmacy.PrescriptionLine, error) {
	l := pharmacy.PrescriptionLine{
		ID:              uuid.New().String(),
		PrescriptionID:  in.PrescriptionID,
		MedicineID:      in.MedicineID,
		DosesPerDay:     in.DosesPerDay,
		QuantityPerDose: in.QuantityPerDose,
		TotalQuantity:   in.TotalQuantity,
		CreatedAt:       time.Now().UTC(),
	}

	s.mu.Lock()
	s.prescriptionLines[l.ID] = l
	s.mu.Unlock()

	return &l, nil
}

func sortPrescriptionsNewestFirst(details []pharmacy.PrescriptionDetail) {
	sort.SliceStable(details, func(i, j int) bool {
		return details[i].CreatedAt.After(details[j].CreatedAt)
	})
}

func sortLinesOldestFirst(lines []pharmacy.PrescriptionLineDetail) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].CreatedAt.Before(lines[j].CreatedAt)
	})
}
