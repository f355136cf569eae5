package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopcore/storefront/internal/repository"
)

// OrderNumberGenerator produces order numbers of the form ORD-YYMMDD-NNNN.
// The sequence resets at local-day boundaries and is allocated through an
// atomically incremented per-day counter, so numbers stay unique under
// concurrent checkouts.
type OrderNumberGenerator struct {
	counters repository.CounterRepository
	clock    func() time.Time
}

func NewOrderNumberGenerator(counters repository.CounterRepository, clock func() time.Time) *OrderNumberGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &OrderNumberGenerator{counters: counters, clock: clock}
}

func (g *OrderNumberGenerator) Next(ctx context.Context) (string, error) {
	day := g.clock().Format("060102")
	seq, err := g.counters.NextSequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, seq), nil
}
