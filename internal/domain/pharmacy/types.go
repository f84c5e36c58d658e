// Package pharmacy defines the core entities and the persistence contract
// shared by both storage backends.
package pharmacy

import "time"

// Prescription status values observed by the application. The status column
// is a free string; storage never enforces a transition graph.
const (
	StatusPending   = "Pending"
	StatusDispensed = "Dispensed"
)

// DefaultRoute is the route of administration assigned when a medicine is
// created without one.
const DefaultRoute = "oral"

// Medicine is a catalog entry. Prices are whole currency units.
type Medicine struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Unit                  string    `json:"unit"`
	StockQuantity         int       `json:"stock_quantity"`
	ReorderQuantity       int       `json:"reorder_quantity"`
	PurchasePrice         int64     `json:"purchase_price"`
	SalePrice             int64     `json:"sale_price"`
	RouteOfAdministration string    `json:"route_of_administration"`
	CreatedAt             time.Time `json:"created_at"`
}

// IsLowStock reports whether the medicine is at or below its reorder
// threshold. This is the single low-stock rule used for alerts and
// statistics.
func (m Medicine) IsLowStock() bool {
	return m.StockQuantity <= m.ReorderQuantity
}

// NewMedicine carries the fields accepted when creating a medicine.
// Omitted numeric fields default to 0 and an omitted route defaults to
// DefaultRoute; the store assigns ID and CreatedAt.
type NewMedicine struct {
	Name                  string `json:"name"`
	Unit                  string `json:"unit"`
	StockQuantity         int    `json:"stock_quantity"`
	ReorderQuantity       int    `json:"reorder_quantity"`
	PurchasePrice         int64  `json:"purchase_price"`
	SalePrice             int64  `json:"sale_price"`
	RouteOfAdministration string `json:"route_of_administration"`
}

// MedicineUpdate is a sparse update: only non-nil fields are written.
type MedicineUpdate struct {
	Name                  *string `json:"name"`
	Unit                  *string `json:"unit"`
	StockQuantity         *int    `json:"stock_quantity"`
	ReorderQuantity       *int    `json:"reorder_quantity"`
	PurchasePrice         *int64  `json:"purchase_price"`
	SalePrice             *int64  `json:"sale_price"`
	RouteOfAdministration *string `json:"route_of_administration"`
}

// Patient is a registered patient.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPatient carries the fields accepted when creating a patient.
type NewPatient struct {
	Name string `json:"name"`
}

// Prescription is a doctor's order for one patient.
type Prescription struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	ExamID     string    `json:"exam_id"`
	DateIssued string    `json:"date_issued"`
	Diagnosis  string    `json:"diagnosis"`
	DoctorName string    `json:"doctor_name"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPrescription carries the fields accepted when creating a prescription.
// An empty status defaults to StatusPending.
type NewPrescription struct {
	PatientID  string `json:"patient_id"`
	ExamID     string `json:"exam_id"`
	DateIssued string `json:"date_issued"`
	Diagnosis  string `json:"diagnosis"`
	DoctorName string `json:"doctor_name"`
	Status     string `json:"status"`
}

// PrescriptionLine is one medicine entry on a prescription. TotalQuantity is
// recorded as supplied by the caller; it is not derived from DosesPerDay and
// QuantityPerDose and the two are never reconciled.
type PrescriptionLine struct {
	ID              string    `json:"id"`
	PrescriptionID  string    `json:"prescription_id"`
	MedicineID      string    `json:"medicine_id"`
	DosesPerDay     int       `json:"doses_per_day"`
	QuantityPerDose int       `json:"quantity_per_dose"`
	TotalQuantity   int       `json:"total_quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewPrescriptionLine carries the fields accepted when appending a line item.
type NewPrescriptionLine struct {
	PrescriptionID  string `json:"prescription_id"`
	MedicineID      string `json:"medicine_id"`
	DosesPerDay     int    `json:"doses_per_day"`
	QuantityPerDose int    `json:"quantity_per_dose"`
	TotalQuantity   int    `json:"total_quantity"`
}

// PrescriptionLineDetail is a line joined with its medicine's display fields.
type PrescriptionLineDetail struct {
	PrescriptionLine
	MedicineName string `json:"medicine_name"`
	MedicineUnit string `json:"medicine_unit"`
}

// PrescriptionDetail is a prescription joined with its patient's name and
// line items, as served by the list and detail endpoints.
type PrescriptionDetail struct {
	Prescription
	PatientName string                   `json:"patient_name"`
	Lines       []PrescriptionLineDetail `json:"lines"`
}
