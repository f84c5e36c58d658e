// Package postgres provides the PostgreSQL persistence adapter. Any query
// failure is propagated to the caller as-is; the only retry-like behavior in
// the whole system is the one-shot startup probe owned by the storage
// selector.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

const medicineColumns = `id, name, unit, stock_quantity, reorder_quantity, purchase_price, sale_price, route_of_administration, created_at`

// Store implements the persistence contract on top of a pgx pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore creates a new adapter.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func scanMedicine(row pgx.Row) (*pharmacy.Medicine, error) {
	var (
		m                           pharmacy.Medicine
		stock, reorder, purch, sale *string
	)
	err := row.Scan(&m.ID, &m.Name, &m.Unit, &stock, &reorder, &purch, &sale, &m.RouteOfAdministration, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.StockQuantity = parseInt(stock)
	m.ReorderQuantity = parseInt(reorder)
	m.PurchasePrice = parseInt64(purch)
	m.SalePrice = parseInt64(sale)
	return &m, nil
}

func (s *Store) queryMedicines(ctx context.Context, query string, args ...any) ([]pharmacy.Medicine, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Non-nil even when empty so both backends serialize empty listings
	// as [] rather than null.
	meds := []pharmacy.Medicine{}
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

func (s *Store) ListMedicines(ctx context.Context) ([]pharmacy.Medicine, error) {
	meds, err := s.queryMedicines(ctx, `SELECT `+medicineColumns+` FROM medicines ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	// Re-sort with the application collation so both backends order
	// identically regardless of the database's collation setting.
	pharmacy.SortMedicinesByName(meds)
	return meds, nil
}

func (s *Store) GetMedicine(ctx context.Context, id string) (*pharmacy.Medicine, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+medicineColumns+` FROM medicines WHERE id = $1`, id)
	m, err := scanMedicine(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pharmacy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

func (s *Store) SearchMedicinesByName(ctx context.Context, term string) ([]pharmacy.Medicine, error) {
	// Fetch the candidate set with a coarse ILIKE filter and apply the
	// canonical prefix-before-substring ranking in the application, so both
	// backends rank identically.
	query := `SELECT ` + medicineColumns + ` FROM medicines`
	args := []any{}
	if trimmed := strings.TrimSpace(term); trimmed != "" {
		query += ` WHERE name ILIKE '%' || $1 || '%'`
		args = append(args, escapeLike(trimmed))
	}

	meds, err := s.queryMedicines(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return pharmacy.RankByName(meds, term), nil
}

// escapeLike neutralizes LIKE wildcards in a user-supplied term so a search
// for "50%" matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
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

	query := `
		INSERT INTO medicines (id, name, unit, stock_quantity, reorder_quantity, purchase_price, sale_price, route_of_administration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		m.ID, m.Name, m.Unit,
		formatInt(m.StockQuantity), formatInt(m.ReorderQuantity),
		formatInt64(m.PurchasePrice), formatInt64(m.SalePrice),
		m.RouteOfAdministration, m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	return &m, nil
}

func (s *Store) UpdateMedicine(ctx context.Context, id string, upd pharmacy.MedicineUpdate) (*pharmacy.Medicine, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Unit != nil {
		add("unit", *upd.Unit)
	}
	if upd.StockQuantity != nil {
		add("stock_quantity", formatInt(*upd.StockQuantity))
	}
	if upd.ReorderQuantity != nil {
		add("reorder_quantity", formatInt(*upd.ReorderQuantity))
	}
	if upd.PurchasePrice != nil {
		add("purchase_price", formatInt64(*upd.PurchasePrice))
	}
	if upd.SalePrice != nil {
		add("sale_price", formatInt64(*upd.SalePrice))
	}
	if upd.RouteOfAdministration != nil {
		add("route_of_administration", *upd.RouteOfAdministration)
	}

	if len(sets) == 0 {
		return s.GetMedicine(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE medicines SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), medicineColumns)

	m, err := scanMedicine(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pharmacy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update medicine: %w", err)
	}
	return m, nil
}

func (s *Store) DeleteMedicine(ctx context.Context, id string) (bool, error) {
	ct, err := s.pool.Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete medicine: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]pharmacy.Patient, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM patients ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	patients := []pharmacy.Patient{}
	for rows.Next() {
		var p pharmacy.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("list patients: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	pharmacy.SortPatientsByName(patients)
	return patients, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*pharmacy.Patient, error) {
	var p pharmacy.Patient
	err := s.pool.QueryRow(ctx, `SELECT id, name, created_at FROM patients WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pharmacy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (s *Store) CreatePatient(ctx context.Context, in pharmacy.NewPatient) (*pharmacy.Patient, error) {
	p := pharmacy.Patient{
		ID:        uuid.New().String(),
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO patients (id, name, created_at) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

const prescriptionDetailColumns = `
	p.id, p.patient_id, p.exam_id, p.date_issued, p.diagnosis, p.doctor_name, p.status, p.created_at,
	COALESCE(pt.name, 'Unknown')
`

func (s *Store) ListPrescriptions(ctx context.Context) ([]pharmacy.PrescriptionDetail, error) {
	query := `
		SELECT ` + prescriptionDetailColumns + `
		FROM prescriptions p
		LEFT JOIN patients pt ON pt.id = p.patient_id
		ORDER BY p.created_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	details := []pharmacy.PrescriptionDetail{}
	for rows.Next() {
		var d pharmacy.PrescriptionDetail
		err := rows.Scan(&d.ID, &d.PatientID, &d.ExamID, &d.DateIssued, &d.Diagnosis,
			&d.DoctorName, &d.Status, &d.CreatedAt, &d.PatientName)
		if err != nil {
			return nil, fmt.Errorf("list prescriptions: %w", err)
		}
		d.Lines = []pharmacy.PrescriptionLineDetail{}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]string, len(details))
	index := make(map[string]int, len(details))
	for i, d := range details {
		ids[i] = d.ID
		index[d.ID] = i
	}

	lines, err := s.queryLines(ctx, `pl.prescription_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		i := index[l.PrescriptionID]
		details[i].Lines = append(details[i].Lines, l)
	}
	return details, nil
}

func (s *Store) GetPrescription(ctx context.Context, id string) (*pharmacy.PrescriptionDetail, error) {
	query := `
		SELECT ` + prescriptionDetailColumns + `
		FROM prescriptions p
		LEFT JOIN patients pt ON pt.id = p.patient_id
		WHERE p.id = $1
	`
	var d pharmacy.PrescriptionDetail
	err := s.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.PatientID, &d.ExamID, &d.DateIssued,
		&d.Diagnosis, &d.DoctorName, &d.Status, &d.CreatedAt, &d.PatientName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pharmacy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prescription: %w", err)
	}

	d.Lines, err = s.queryLines(ctx, `pl.prescription_id = $1`, d.ID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) queryLines(ctx context.Context, where string, arg any) ([]pharmacy.PrescriptionLineDetail, error) {
	query := `
		SELECT pl.id, pl.prescription_id, pl.medicine_id, pl.doses_per_day, pl.quantity_per_dose, pl.total_quantity, pl.created_at,
		       COALESCE(m.name, 'Unknown'), COALESCE(m.unit, 'Unknown')
		FROM prescription_lines pl
		LEFT JOIN medicines m ON m.id = pl.medicine_id
		WHERE ` + where + `
		ORDER BY pl.created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list prescription lines: %w", err)
	}
	defer rows.Close()

	lines := []pharmacy.PrescriptionLineDetail{}
	for rows.Next() {
		var l pharmacy.PrescriptionLineDetail
		err := rows.Scan(&l.ID, &l.PrescriptionID, &l.MedicineID, &l.DosesPerDay,
			&l.QuantityPerDose, &l.TotalQuantity, &l.CreatedAt, &l.MedicineName, &l.MedicineUnit)
		if err != nil {
			return nil, fmt.Errorf("list prescription lines: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
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

	query := `
		INSERT INTO prescriptions (id, patient_id, exam_id, date_issued, diagnosis, doctor_name, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.pool.Exec(ctx, query,
		p.ID, p.PatientID, p.ExamID, p.DateIssued, p.Diagnosis, p.DoctorName, p.Status, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return &p, nil
}

func (s *Store) UpdatePrescriptionStatus(ctx context.Context, id, status string) (*pharmacy.Prescription, error) {
	query := `
		UPDATE prescriptions SET status = $1 WHERE id = $2
		RETURNING id, patient_id, exam_id, date_issued, diagnosis, doctor_name, status, created_at
	`
	var p pharmacy.Prescription
	err := s.pool.QueryRow(ctx, query, status, id).Scan(&p.ID, &p.PatientID, &p.ExamID,
		&p.DateIssued, &p.Diagnosis, &p.DoctorName, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pharmacy.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update prescription status: %w", err)
	}
	return &p, nil
}

func (s *Store) ListPrescriptionLines(ctx context.Context, prescriptionID string) ([]pharmacy.PrescriptionLineDetail, error) {
	return s.queryLines(ctx, `pl.prescription_id = $1`, prescriptionID)
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

	query := `
		INSERT INTO prescription_lines (id, prescription_id, medicine_id, doses_per_day, quantity_per_dose, total_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		l.ID, l.PrescriptionID, l.MedicineID, l.DosesPerDay, l.QuantityPerDose, l.TotalQuantity, l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create prescription line: %w", err)
	}
	return &l, nil
}
