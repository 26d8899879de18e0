package postgresql

import (
	"context"
	"fmt"

	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
	"github.com/sitecrew/workforce-backend-go/internal/pkg/database"
)

type invoiceSequenceRepositoryImpl struct {
	db *database.DB
}

func NewInvoiceSequenceRepository(db *database.DB) summary.InvoiceSequenceRepository {
	return &invoiceSequenceRepositoryImpl{db: db}
}

// Next implements summary.InvoiceSequenceRepository.
//
// The counter row is created on first use, seeded from the highest sequence
// already stored on monthly_summaries, and incremented atomically afterwards.
// The row lock taken by the upsert serializes reservations for the bucket
// until the caller's transaction ends.
func (r *invoiceSequenceRepositoryImpl) Next(ctx context.Context, month, year int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invoice_sequences AS s (period_year, period_month, last_value)
		VALUES (
			$1, $2,
			COALESCE((
				SELECT MAX(invoice_seq) FROM monthly_summaries
				WHERE period_year = $1 AND period_month = $2
			), 0) + 1
		)
		ON CONFLICT (period_year, period_month) DO UPDATE
		SET last_value = GREATEST(s.last_value, EXCLUDED.last_value - 1) + 1,
			updated_at = NOW()
		RETURNING last_value
	`

	var next int
	if err := q.QueryRow(ctx, query, year, month).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to reserve invoice sequence for %04d-%02d: %w", year, month, err)
	}
	return next, nil
}
