package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpharm/go-pims/internal/domain/pharmacy"
)

func TestSeededCatalog(t *testing.T) {
	s := NewStore(nil)

	meds, err := s.ListMedicines(context.Background())
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Amoxicillin 250mg", meds[0].Name)
	assert.Equal(t, "Paracetamol 500mg", meds[1].Name)
	for _, m := range meds {
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	}
}

func TestCreateGetMedicine(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	created, err := s.CreateMedicine(ctx, pharmacy.NewMedicine{
		Name:          "Ibuprofen 400mg",
		Unit:          "tablet",
		StockQuantity: 40,
		SalePrice:     600,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, pharmacy.DefaultRoute, created.RouteOfAdministration)
	assert.Equal(t, 0, created.ReorderQuantity)

	got, err := s.GetMedicine(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestGetMedicineNotFound(t *testing.T) {
	s := NewStore(nil)

	_, err := s.GetMedicine(context.Background(), "missing")
	assert.ErrorIs(t, err, pharmacy.ErrNotFound)
}

func TestUpdateMedicineSparse(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	created, err := s.CreateMedicine(ctx, pharmacy.NewMedicine{
		Name: "Cetirizine", Unit: "tablet", StockQuantity: 20, SalePrice: 300,
	})
	require.NoError(t, err)

	stock := 55
	updated, err := s.UpdateMedicine(ctx, created.ID, pharmacy.MedicineUpdate{StockQuantity: &stock})
	require.NoError(t, err)

	assert.Equal(t, 55, updated.StockQuantity)
	// Untouched fields survive, identity fields never change.
	assert.Equal(t, "Cetirizine", updated.Name)
	assert.Equal(t, int64(300), updated.SalePrice)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateMedicineNotFound(t *testing.T) {
	s := NewStore(nil)

	name := "x"
	_, err := s.UpdateMedicine(context.Background(), "missing", pharmacy.MedicineUpdate{Name: &name})
	assert.ErrorIs(t, err, pharmacy.ErrNotFound)
}

func TestDeleteMedicineTwice(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	created, err := s.CreateMedicine(ctx, pharmacy.NewMedicine{Name: "Temp", Unit: "vial"})
	require.NoError(t, err)

	deleted, err := s.DeleteMedicine(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.GetMedicine(ctx, created.ID)
	assert.ErrorIs(t, err, pharmacy.ErrNotFound)

	deleted, err = s.DeleteMedicine(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSearchMedicines(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	got, err := s.SearchMedicinesByName(ctx, "amo")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Amoxicillin 250mg", got[0].Name)

	got, err = s.SearchMedicinesByName(ctx, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPatients(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	created, err := s.CreatePatient(ctx, pharmacy.NewPatient{Name: "Jordan Lee"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.GetPatient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", got.Name)

	patients, err := s.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	_, err = s.GetPatient(ctx, "missing")
	assert.ErrorIs(t, err, pharmacy.ErrNotFound)
}

func TestPrescriptionLifecycle(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	patient, err := s.CreatePatient(ctx, pharmacy.NewPatient{Name: "Sam Tran"})
	require.NoError(t, err)

	p, err := s.CreatePrescription(ctx, pharmacy.NewPrescription{
		PatientID:  patient.ID,
		Diagnosis:  "flu",
		DoctorName: "Dr. Hoang",
	})
	require.NoError(t, err)
	assert.Equal(t, pharmacy.StatusPending, p.Status)

	meds, err := s.ListMedicines(ctx)
	require.NoError(t, err)

	line, err := s.CreatePrescriptionLine(ctx, pharmacy.NewPrescriptionLine{
		PrescriptionID:  p.ID,
		MedicineID:      meds[0].ID,
		DosesPerDay:     3,
		QuantityPerDose: 1,
		TotalQuantity:   15,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, line.ID)

	detail, err := s.GetPrescription(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam Tran", detail.PatientName)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, meds[0].Name, detail.Lines[0].MedicineName)
	assert.Equal(t, 15, detail.Lines[0].TotalQuantity)

	updated, err := s.UpdatePrescriptionStatus(ctx, p.ID, pharmacy.StatusDispensed)
	require.NoError(t, err)
	assert.Equal(t, pharmacy.StatusDispensed, updated.Status)

	all, err := s.ListPrescriptions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, pharmacy.StatusDispensed, all[0].Status)
}

func TestPrescriptionJoinFallbacks(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	p, err := s.CreatePrescription(ctx, pharmacy.NewPrescription{PatientID: "missing-patient"})
	require.NoError(t, err)

	_, err = s.CreatePrescriptionLine(ctx, pharmacy.NewPrescriptionLine{
		PrescriptionID: p.ID,
		MedicineID:     "missing-medicine",
	})
	require.NoError(t, err)

	detail, err := s.GetPrescription(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", detail.PatientName)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "Unknown", detail.Lines[0].MedicineName)
	assert.Equal(t, "Unknown", detail.Lines[0].MedicineUnit)
}

func TestUpdatePrescriptionStatusNotFound(t *testing.T) {
	s := NewStore(nil)

	_, err := s.UpdatePrescriptionStatus(context.Background(), "missing", pharmacy.StatusDispensed)
	assert.ErrorIs(t, err, pharmacy.ErrNotFound)
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateMedicine(ctx, pharmacy.NewMedicine{
				Name: fmt.Sprintf("Med %d", i), Unit: "tablet",
			})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.ListMedicines(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	meds, err := s.ListMedicines(ctx)
	require.NoError(t, err)
	assert.Len(t, meds, 22)
}
