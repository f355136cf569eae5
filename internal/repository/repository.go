package repository

import (
	"context"
	"time"

	"github.com/shopcore/storefront/internal/entity"
)

// ProductRepository handles persistence for Products, including the atomic
// stock operations the stock guard relies on.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (*entity.Product, error)
	// DecrementStock conditionally reserves stock in a single statement
	// (stock = stock - qty WHERE stock >= qty AND status = 'active').
	// On success it returns the product snapshot; if the condition did not
	// match it returns nil with no error, and the caller classifies why.
	DecrementStock(ctx context.Context, id string, qty int) (*entity.Product, error)
	// IncrementStock releases previously reserved stock.
	IncrementStock(ctx context.Context, id string, qty int) error
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// CartRepository handles persistence for per-user cart lines.
type CartRepository interface {
	Get(ctx context.Context, userID string) ([]entity.CartItem, error)
	// AddItem merges the item into the cart: an existing (product, variant)
	// line has its quantity increased, otherwise the line is inserted.
	AddItem(ctx context.Context, userID string, item entity.CartItem) error
	// SetQuantity sets the absolute quantity of an existing line. It
	// reports whether the line existed.
	SetQuantity(ctx context.Context, userID, productID, variantID string, qty int) (bool, error)
	// RemoveItem deletes a line. Removing an absent line is a no-op.
	RemoveItem(ctx context.Context, userID, productID, variantID string) error
	Clear(ctx context.Context, userID string) error
}

// OrderStatusUpdate carries the mutable fields of an order lifecycle write.
// Nil pointers leave the corresponding column untouched. ExpectStatus, when
// set, makes the write conditional: it applies only while the order is still
// in that status, so two racing writers cannot both observe the same
// transition as their own.
type OrderStatusUpdate struct {
	Status             *entity.OrderStatus
	PaymentStatus      *entity.PaymentStatus
	PaymentReference   *string
	TrackingNumber     *string
	CancelledAt        *time.Time
	CancellationReason *string
	DeliveredAt        *time.Time
	ExpectStatus       *entity.OrderStatus
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// Create persists the order and its line items in one transaction.
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id string) (*entity.Order, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id string, upd OrderStatusUpdate) error
}

// CounterRepository allocates strictly increasing sequence numbers scoped to
// a calendar day. NextSequence must be atomic under concurrent callers.
type CounterRepository interface {
	NextSequence(ctx context.Context, day string) (int, error)
}

// CartCache is a best-effort cache of assembled cart views. A miss or a
// cache failure never fails the request.
type CartCache interface {
	Get(ctx context.Context, userID string) (*entity.CartView, error)
	Set(ctx context.Context, userID string, view *entity.CartView) error
	Invalidate(ctx context.Context, userID string) error
}
