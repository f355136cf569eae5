package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the store catalog.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Status      ProductStatus   `json:"status"`
	Stock       int             `json:"stock"`
}

// ProductStatus marks whether a product can be sold.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// CartItem is one line in a user's cart. Lines are keyed by
// (ProductID, VariantID); adding the same key again merges quantities.
type CartItem struct {
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// CartLineView is a cart line joined with live product data. Lines whose
// product disappeared or went inactive stay in the view with Available=false
// so the client can show "no longer available" instead of silently losing them.
type CartLineView struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// CartView is the cart snapshot returned to clients. Subtotal covers
// available lines only.
type CartView struct {
	UserID   string          `json:"user_id"`
	Items    []CartLineView  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// OrderItem is a line item within an order, snapshotted at creation time.
// It never changes afterwards, even if the product's name or price does.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ContactInfo identifies the person placing an order.
type ContactInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
}

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Floor      string `json:"floor,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order represents a customer order. Line items are immutable after creation;
// only status, payment status and audit fields change afterwards.
type Order struct {
	ID                 string          `json:"id"`
	OrderNumber        string          `json:"order_number"`
	UserID             string          `json:"user_id"`
	Items              []OrderItem     `json:"items"`
	ContactInfo        ContactInfo     `json:"contact_info"`
	ShippingAddress    ShippingAddress `json:"shipping_address"`
	PaymentMethod      PaymentMethod   `json:"payment_method"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	ShippingCost       decimal.Decimal `json:"shipping_cost"`
	Total              decimal.Decimal `json:"total"`
	Status             OrderStatus     `json:"status"`
	PaymentStatus      PaymentStatus   `json:"payment_status"`
	PaymentReference   string          `json:"payment_reference,omitempty"`
	TrackingNumber     string          `json:"tracking_number,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
}

// --- Events ---

// OrderPlaced is emitted when a checkout completes successfully.
type OrderPlaced struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      string          `json:"user_id"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted on every lifecycle transition, including
// cancellation, so downstream systems (email, invoicing) can react.
type OrderStatusChanged struct {
	OrderID       string        `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ChangedAt     time.Time     `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }

// Event represents a domain event.
type Event interface {
	EventType() string
}
