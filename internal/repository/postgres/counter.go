package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopcore/storefront/internal/repository"
)

type counterRepository struct {
	db *sql.DB
}

// NewCounterRepository creates a new CounterRepository backed by Postgres.
func NewCounterRepository(db *sql.DB) repository.CounterRepository {
	return &counterRepository{db: db}
}

// NextSequence advances the per-day counter in a single upsert, so two
// concurrent checkouts the same day can never read the same value.
func (r *counterRepository) NextSequence(ctx context.Context, day string) (int, error) {
	var seq int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO order_counters (day, seq) VALUES ($1, 1)
		 ON CONFLICT (day) DO UPDATE SET seq = order_counters.seq + 1
		 RETURNING seq`,
		day,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to advance counter for day %s: %w", day, err)
	}
	return seq, nil
}
