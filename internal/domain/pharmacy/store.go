package pharmacy

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store methods when the referenced id does not
// exist. Both backends return it unwrapped or wrapped with %w.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract implemented by the in-memory entity
// store and the PostgreSQL adapter. The two are interchangeable: no caller
// may depend on which backend serves a request.
//
// Medicine and patient listings are ordered ascending by name using
// Vietnamese collation; prescriptions are ordered newest first.
type Store interface {
	ListMedicines(ctx context.Context) ([]Medicine, error)
	GetMedicine(ctx context.Context, id string) (*Medicine, error)
	// SearchMedicinesByName returns at most SearchLimit medicines ranked by
	// RankByName.
	SearchMedicinesByName(ctx context.Context, term string) ([]Medicine, error)
	CreateMedicine(ctx context.Context, in NewMedicine) (*Medicine, error)
	// UpdateMedicine overwrites only the non-nil fields of upd.
	UpdateMedicine(ctx context.Context, id string, upd MedicineUpdate) (*Medicine, error)
	// DeleteMedicine reports whether a record existed and was removed.
	DeleteMedicine(ctx context.Context, id string) (bool, error)

	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatient(ctx context.Context, id string) (*Patient, error)
	CreatePatient(ctx context.Context, in NewPatient) (*Patient, error)

	ListPrescriptions(ctx context.Context) ([]PrescriptionDetail, error)
	GetPrescription(ctx context.Context, id string) (*PrescriptionDetail, error)
	CreatePrescription(ctx context.Context, in NewPrescription) (*Prescription, error)
	UpdatePrescriptionStatus(ctx context.Context, id, status string) (*Prescription, error)

	ListPrescriptionLines(ctx context.Context, prescriptionID string) ([]PrescriptionLineDetail, error)
	CreatePrescriptionLine(ctx context.Context, in NewPrescriptionLine) (*PrescriptionLine, error)
}
