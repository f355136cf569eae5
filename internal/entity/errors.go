package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive indicates the product exists but cannot be sold.
	ErrProductInactive = errors.New("product is not active")
	// ErrOrderNotFound indicates the order does not exist or is not visible
	// to the caller.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyCart indicates a checkout was attempted over an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCartLineNotFound indicates a quantity update targeted a line that
	// is not in the cart.
	ErrCartLineNotFound = errors.New("item not in cart")
	// ErrCounterConflict indicates the order-number counter could not be
	// advanced. This is a bug signal, not a user error.
	ErrCounterConflict = errors.New("order number counter conflict")
)

// InsufficientStockError is returned when a requested quantity exceeds the
// currently available stock. Available is included so the caller can offer
// "add N instead".
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested %d, available %d)",
		e.ProductID, e.Requested, e.Available)
}

// ValidationError reports malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidTransitionError is returned when an order status change violates
// the lifecycle rules.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
