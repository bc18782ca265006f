package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-ticket-service/internal/domain"
)

// SequenceRepository hands out per-year ticket sequence values.
type SequenceRepository interface {
	// Next atomically reserves and returns the next sequence value for year.
	Next(ctx context.Context, year int) (int, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository builds repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// Next upserts the counter row for year. A missing row is seeded from the
// highest ticket number already issued for that year.
func (r *sequenceRepository) Next(ctx context.Context, year int) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (year, last_value)
        VALUES ($1, (
            SELECT COALESCE(MAX(CAST(split_part(numero_ticket, '-', 3) AS INTEGER)), 0) + 1
            FROM tickets WHERE numero_ticket LIKE $2
        ))
        ON CONFLICT (year) DO UPDATE SET last_value = ticket_sequences.last_value + 1, updated_at = NOW()
        RETURNING last_value`
	pattern := fmt.Sprintf("%s-%d-%%", domain.TicketNumberPrefix, year)
	var next int
	if err := r.pool.QueryRow(ctx, query, year, pattern).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}
