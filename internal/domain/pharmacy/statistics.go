package pharmacy

// Statistics holds the four dashboard aggregates.
type Statistics struct {
	TotalMedicines       int   `json:"total_medicines"`
	LowStockMedicines    int   `json:"low_stock_medicines"`
	PendingPrescriptions int   `json:"pending_prescriptions"`
	TotalValue           int64 `json:"total_value"`
}

// ComputeStatistics derives all four aggregates from the current data set.
// Every call site uses this one computation regardless of which backend
// supplied the data; nothing is hard-coded to zero.
func ComputeStatistics(meds []Medicine, prescriptions []PrescriptionDetail) Statistics {
	stats := Statistics{TotalMedicines: len(meds)}
	for _, m := range meds {
		if m.IsLowStock() {
			stats.LowStockMedicines++
		}
		stats.TotalValue += int64(m.StockQuantity) * m.SalePrice
	}
	for _, p := range prescriptions {
		if p.Status == StatusPending {
			stats.PendingPrescriptions++
		}
	}
	return stats
}
