package entity

import "github.com/shopspring/decimal"

// FreeShippingThreshold is the subtotal at which shipping becomes free.
var FreeShippingThreshold = decimal.NewFromInt(50000)

// FlatShippingFee is charged on every order below the free-shipping threshold.
var FlatShippingFee = decimal.NewFromInt(5000)

// OrderTotals is the server-computed money breakdown of an order.
type OrderTotals struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// CalculateTotals computes subtotal, shipping and total for a set of order
// items. Shipping is free iff the subtotal reaches the threshold, so
// Total == Subtotal + ShippingCost always holds.
func CalculateTotals(items []OrderItem) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}

	shipping := FlatShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return OrderTotals{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Total:        subtotal.Add(shipping),
	}
}

// NewOrderItem snapshots a product into an order line, computing the line
// subtotal from the snapshotted price.
func NewOrderItem(p Product, variantID string, quantity int) OrderItem {
	return OrderItem{
		ProductID: p.ID,
		VariantID: variantID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
