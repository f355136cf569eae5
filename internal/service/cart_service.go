package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

// CartService owns the per-user line-item list. Every mutation re-validates
// the requested quantity against live stock (validate-only; nothing is
// reserved until checkout) and returns the refreshed cart snapshot.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	guard    *StockGuard
	cache    repository.CartCache
	clock    func() time.Time
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	guard *StockGuard,
	cache repository.CartCache,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		guard:    guard,
		cache:    cache,
		clock:    time.Now,
	}
}

// Add merges quantity into the (productID, variantID) line, validating the
// combined quantity against available stock first.
func (s *CartService) Add(ctx context.Context, userID, productID string, quantity int, variantID string) (*entity.CartView, error) {
	if quantity < 1 {
		return nil, &entity.ValidationError{Field: "quantity", Message: "must be at least 1"}
	}
	if productID == "" {
		return nil, &entity.ValidationError{Field: "product_id", Message: "is required"}
	}

	items, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	existing := 0
	for _, item := range items {
		if item.ProductID == productID && item.VariantID == variantID {
			existing = item.Quantity
			break
		}
	}

	if err := s.guard.Validate(ctx, productID, existing+quantity); err != nil {
		return nil, err
	}

	err = s.carts.AddItem(ctx, userID, entity.CartItem{
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		AddedAt:   s.clock(),
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return s.Get(ctx, userID)
}

// Update sets the absolute quantity of an existing line. Quantity 0 removes
// the line; negative quantities are rejected.
func (s *CartService) Update(ctx context.Context, userID, productID string, quantity int, variantID string) (*entity.CartView, error) {
	if quantity < 0 {
		return nil, &entity.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if quantity == 0 {
		return s.Remove(ctx, userID, productID, variantID)
	}

	if err := s.guard.Validate(ctx, productID, quantity); err != nil {
		return nil, err
	}

	found, err := s.carts.SetQuantity(ctx, userID, productID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, entity.ErrCartLineNotFound
	}

	s.invalidate(ctx, userID)
	return s.Get(ctx, userID)
}

// Remove deletes a line. Removing a line that is not in the cart is a no-op
// success, so double-submitted removals stay harmless.
func (s *CartService) Remove(ctx context.Context, userID, productID, variantID string) (*entity.CartView, error) {
	if err := s.carts.RemoveItem(ctx, userID, productID, variantID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return s.Get(ctx, userID)
}

// Clear empties the cart unconditionally.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// Get returns the cart joined with live product data, read through the
// cache. Lines whose product vanished or went inactive are flagged as
// unavailable rather than dropped.
func (s *CartService) Get(ctx context.Context, userID string) (*entity.CartView, error) {
	if cached, err := s.cache.Get(ctx, userID); err != nil {
		slog.Warn("Cart cache read failed", "user_id", userID, "err", err)
	} else if cached != nil {
		return cached, nil
	}

	items, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	view := &entity.CartView{
		UserID:   userID,
		Items:    make([]entity.CartLineView, 0, len(items)),
		Subtotal: decimal.Zero,
	}

	for _, item := range items {
		line := entity.CartLineView{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
			Price:     decimal.Zero,
		}

		p, err := s.products.FindByID(ctx, item.ProductID)
		switch {
		case errors.Is(err, entity.ErrProductNotFound):
			// keep the line so the client can surface "no longer available"
		case err != nil:
			return nil, err
		default:
			line.Name = p.Name
			line.Price = p.Price
			line.Stock = p.Stock
			line.Available = p.Status == entity.ProductActive
		}

		if line.Available {
			view.Subtotal = view.Subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		view.Items = append(view.Items, line)
	}

	if err := s.cache.Set(ctx, userID, view); err != nil {
		slog.Warn("Cart cache write failed", "user_id", userID, "err", err)
	}
	return view, nil
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		slog.Warn("Cart cache invalidation failed", "user_id", userID, "err", err)
	}
}
