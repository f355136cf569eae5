package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/storefront/internal/entity"
)

func activeProduct(id string, price int64, stock int) entity.Product {
	return entity.Product{
		ID:     id,
		Name:   id,
		Price:  decimal.NewFromInt(price),
		Status: entity.ProductActive,
		Stock:  stock,
	}
}

func newCartFixture(products ...entity.Product) (*CartService, *memProducts, *memCarts) {
	prods := newMemProducts(products...)
	carts := newMemCarts()
	guard := NewStockGuard(prods)
	svc := NewCartService(carts, prods, guard, noopCache{})
	return svc, prods, carts
}

func TestCartAddMergesSameLine(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 2, "")
	require.NoError(t, err)

	view, err := svc.Add(ctx, "u1", "mate", 3, "")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
}

func TestCartAddDistinctVariantsAreSeparateLines(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("remera", 12000, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "remera", 1, "talle-m")
	require.NoError(t, err)
	view, err := svc.Add(ctx, "u1", "remera", 1, "talle-l")
	require.NoError(t, err)

	assert.Len(t, view.Items, 2)
}

func TestCartAddRejectsCombinedQuantityOverStock(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("termo", 52000, 5))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "termo", 4, "")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "u1", "termo", 2, "")
	var stockErr *entity.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 6, stockErr.Requested)

	// the cart keeps the original quantity
	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
}

func TestCartAddValidation(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 0, "")
	var validationErr *entity.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Add(ctx, "u1", "ghost", 1, "")
	assert.ErrorIs(t, err, entity.ErrProductNotFound)
}

func TestCartAddInactiveProduct(t *testing.T) {
	inactive := activeProduct("poncho", 64000, 3)
	inactive.Status = entity.ProductInactive
	svc, _, _ := newCartFixture(inactive)

	_, err := svc.Add(context.Background(), "u1", "poncho", 1, "")
	assert.ErrorIs(t, err, entity.ErrProductInactive)
}

func TestCartUpdateSetsAbsoluteQuantity(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 5, "")
	require.NoError(t, err)

	view, err := svc.Update(ctx, "u1", "mate", 2, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestCartUpdateZeroRemovesLine(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 2, "")
	require.NoError(t, err)

	view, err := svc.Update(ctx, "u1", "mate", 0, "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartUpdateNegativeQuantityFails(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))

	_, err := svc.Update(context.Background(), "u1", "mate", -1, "")
	var validationErr *entity.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCartUpdateAbsentLine(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))

	_, err := svc.Update(context.Background(), "u1", "mate", 2, "")
	assert.ErrorIs(t, err, entity.ErrCartLineNotFound)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	// removing something never added is a no-op success
	view, err := svc.Remove(ctx, "u1", "mate", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.Add(ctx, "u1", "mate", 1, "")
	require.NoError(t, err)

	view, err = svc.Remove(ctx, "u1", "mate", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.Remove(ctx, "u1", "mate", "")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartClear(t *testing.T) {
	svc, _, _ := newCartFixture(activeProduct("mate", 18500, 10), activeProduct("termo", 52000, 5))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 1, "")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "termo", 1, "")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "u1"))
	require.NoError(t, svc.Clear(ctx, "u1")) // idempotent

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartGetFlagsUnavailableLines(t *testing.T) {
	svc, prods, _ := newCartFixture(activeProduct("mate", 18500, 10), activeProduct("termo", 52000, 5))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 2, "")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "termo", 1, "")
	require.NoError(t, err)

	// product goes inactive after it was added
	prods.mu.Lock()
	prods.products["termo"].Status = entity.ProductInactive
	prods.mu.Unlock()

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2, "unavailable lines are flagged, not dropped")

	byID := map[string]entity.CartLineView{}
	for _, line := range view.Items {
		byID[line.ProductID] = line
	}
	assert.True(t, byID["mate"].Available)
	assert.False(t, byID["termo"].Available)

	// subtotal counts only available lines
	assert.True(t, view.Subtotal.Equal(decimal.NewFromInt(37000)))
}

func TestCartMutationsDoNotReserveStock(t *testing.T) {
	svc, prods, _ := newCartFixture(activeProduct("mate", 18500, 10))
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "mate", 4, "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, "u1", "mate", 6, "")
	require.NoError(t, err)

	assert.Equal(t, 10, prods.stock("mate"), "cart operations validate only")
	assert.Zero(t, prods.decrements)
}
