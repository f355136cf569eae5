package service

import (
	"context"
	"fmt"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

// StockGuard is the single gate between buyers and product stock. Cart
// mutations use Validate (no side effect); order assembly uses Reserve,
// which decrements stock atomically at the store so racing buyers cannot
// oversell the last units.
type StockGuard struct {
	products repository.ProductRepository
}

func NewStockGuard(products repository.ProductRepository) *StockGuard {
	return &StockGuard{products: products}
}

// Validate checks that qty units of the product could be bought right now,
// without reserving anything. Stock may still change before checkout, which
// is why Reserve re-checks at order-assembly time.
func (g *StockGuard) Validate(ctx context.Context, productID string, qty int) error {
	p, err := g.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.Status != entity.ProductActive {
		return entity.ErrProductInactive
	}
	if p.Stock < qty {
		return &entity.InsufficientStockError{ProductID: productID, Requested: qty, Available: p.Stock}
	}
	return nil
}

// Reserve decrements available stock by qty in one conditional update and
// returns the product snapshot taken by that same statement. When the
// condition fails it re-reads the product to report why.
func (g *StockGuard) Reserve(ctx context.Context, productID string, qty int) (*entity.Product, error) {
	p, err := g.products.DecrementStock(ctx, productID, qty)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve stock: %w", err)
	}
	if p != nil {
		return p, nil
	}

	current, err := g.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.ProductActive {
		return nil, entity.ErrProductInactive
	}
	return nil, &entity.InsufficientStockError{ProductID: productID, Requested: qty, Available: current.Stock}
}

// Release returns previously reserved stock, used for compensating rollback
// during order assembly and for restocking cancelled orders.
func (g *StockGuard) Release(ctx context.Context, productID string, qty int) error {
	return g.products.IncrementStock(ctx, productID, qty)
}
