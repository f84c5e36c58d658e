package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The medicine quantity and price columns are TEXT to stay drop-in
// compatible with the hosted backend this schema was migrated from, which
// stored them as strings. The adapter parses them back at the boundary.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS medicines (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		stock_quantity TEXT NOT NULL DEFAULT '0',
		reorder_quantity TEXT NOT NULL DEFAULT '0',
		purchase_price TEXT NOT NULL DEFAULT '0',
		sale_price TEXT NOT NULL DEFAULT '0',
		route_of_administration TEXT NOT NULL DEFAULT 'oral',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		exam_id TEXT NOT NULL DEFAULT '',
		date_issued TEXT NOT NULL DEFAULT '',
		diagnosis TEXT NOT NULL DEFAULT '',
		doctor_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS prescription_lines (
		id TEXT PRIMARY KEY,
		prescription_id TEXT NOT NULL,
		medicine_id TEXT NOT NULL,
		doses_per_day INTEGER NOT NULL DEFAULT 0,
		quantity_per_dose INTEGER NOT NULL DEFAULT 0,
		total_quantity INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prescription_lines_prescription_id
		ON prescription_lines (prescription_id)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
