package pharmacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil, nil)

	assert.Equal(t, Statistics{}, stats)
}

func TestComputeStatistics(t *testing.T) {
	meds := []Medicine{
		{Name: "A", StockQuantity: 10, ReorderQuantity: 20, SalePrice: 500},  // low stock
		{Name: "B", StockQuantity: 30, ReorderQuantity: 30, SalePrice: 100},  // boundary: low stock
		{Name: "C", StockQuantity: 100, ReorderQuantity: 10, SalePrice: 250}, // healthy
	}
	prescriptions := []PrescriptionDetail{
		{Prescription: Prescription{Status: StatusPending}},
		{Prescription: Prescription{Status: StatusDispensed}},
		{Prescription: Prescription{Status: StatusPending}},
	}

	stats := ComputeStatistics(meds, prescriptions)

	assert.Equal(t, 3, stats.TotalMedicines)
	assert.Equal(t, 2, stats.LowStockMedicines)
	assert.Equal(t, 2, stats.PendingPrescriptions)
	assert.Equal(t, int64(10*500+30*100+100*250), stats.TotalValue)
}

func TestIsLowStockBoundary(t *testing.T) {
	assert.True(t, Medicine{StockQuantity: 5, ReorderQuantity: 5}.IsLowStock())
	assert.True(t, Medicine{StockQuantity: 4, ReorderQuantity: 5}.IsLowStock())
	assert.False(t, Medicine{StockQuantity: 6, ReorderQuantity: 5}.IsLowStock())
}
