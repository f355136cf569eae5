package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/messaging"
	"github.com/shopcore/storefront/internal/repository"
)

const (
	// TopicOrderPlaced carries OrderPlaced events for downstream consumers.
	TopicOrderPlaced = "orders.placed"
	// TopicOrderStatusChanged carries lifecycle transitions.
	TopicOrderStatusChanged = "orders.status_changed"
)

// OrderService converts carts into immutable orders and drives the order
// lifecycle afterwards.
type OrderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	guard     *StockGuard
	numbers   *OrderNumberGenerator
	cache     repository.CartCache
	publisher messaging.Publisher
	clock     func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	guard *StockGuard,
	numbers *OrderNumberGenerator,
	cache repository.CartCache,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		guard:     guard,
		numbers:   numbers,
		cache:     cache,
		publisher: publisher,
		clock:     time.Now,
	}
}

// CheckoutInput is the buyer-supplied part of an order. Totals, the order
// number and the line snapshots are always computed server-side.
type CheckoutInput struct {
	ContactInfo     entity.ContactInfo
	ShippingAddress entity.ShippingAddress
	PaymentMethod   entity.PaymentMethod
}

// CheckoutResult pairs the created order with the payment instructions the
// client must show.
type CheckoutResult struct {
	Order               *entity.Order       `json:"order"`
	PaymentInstructions PaymentInstructions `json:"payment_instructions"`
}

// CreateOrder runs the checkout pipeline: re-validate and reserve stock for
// every cart line, snapshot prices, compute totals, allocate an order number,
// persist the order, drain the cart and emit OrderPlaced.
//
// Stock reservation is all-or-nothing: a failure anywhere after the first
// reservation releases everything reserved in this attempt. Rollback is
// triggered only by downstream failure, never by the client disconnecting,
// so the request context is detached before the first reservation.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	if err := validateCheckoutInput(in); err != nil {
		return nil, err
	}

	items, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, entity.ErrEmptyCart
	}

	ctx = context.WithoutCancel(ctx)

	lines := make([]entity.OrderItem, 0, len(items))
	reserved := make([]entity.CartItem, 0, len(items))
	for _, item := range items {
		p, err := s.guard.Reserve(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.releaseAll(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
		lines = append(lines, entity.NewOrderItem(*p, item.VariantID, item.Quantity))
	}

	totals := entity.CalculateTotals(lines)

	number, err := s.numbers.Next(ctx)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return nil, err
	}

	now := s.clock()
	order := &entity.Order{
		ID:              uuid.NewString(),
		OrderNumber:     number,
		UserID:          userID,
		Items:           lines,
		ContactInfo:     in.ContactInfo,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Total:           totals.Total,
		Status:          entity.StatusPending,
		PaymentStatus:   entity.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseAll(ctx, reserved)
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// The order exists; a cart-clear failure must not fail the checkout.
	if err := s.carts.Clear(ctx, userID); err != nil {
		slog.Error("Failed to clear cart after checkout", "user_id", userID, "order_id", order.ID, "err", err)
	}
	s.invalidateCart(ctx, userID)

	placed := entity.OrderPlaced{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       order.Items,
		Total:       order.Total,
		PlacedAt:    now,
	}
	if err := s.publisher.PublishEvent(ctx, TopicOrderPlaced, order.ID, placed); err != nil {
		slog.Error("Failed to publish OrderPlaced", "order_id", order.ID, "err", err)
	}

	slog.Info("Order placed", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.Total)

	return &CheckoutResult{
		Order:               order,
		PaymentInstructions: BuildPaymentInstructions(order.PaymentMethod, order.OrderNumber, order.Total),
	}, nil
}

func (s *OrderService) releaseAll(ctx context.Context, reserved []entity.CartItem) {
	for _, item := range reserved {
		if err := s.guard.Release(ctx, item.ProductID, item.Quantity); err != nil {
			slog.Error("Failed to release reserved stock", "product_id", item.ProductID, "quantity", item.Quantity, "err", err)
		}
	}
}

// GetOrder returns an order if it belongs to the given user. Orders owned by
// someone else are reported as not found, not as forbidden.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, entity.ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders returns the user's most recent orders.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindByUser(ctx, userID, limit)
}

// ListRecent returns the latest orders across all users (admin view).
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindRecent(ctx, limit)
}

// Cancel lets the owning user cancel a pending order. Cancelling anything
// that is not pending, including an already cancelled order, fails with an
// InvalidTransitionError. Cancellation returns the reserved stock.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID, reason string) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(order.Status, entity.StatusCancelled) {
		return nil, &entity.InvalidTransitionError{From: order.Status, To: entity.StatusCancelled}
	}

	// The write is conditional on the order still being in the status we
	// read; a double-submitted cancel loses that race and fails here, so
	// the reservation below is released exactly once.
	now := s.clock()
	status := entity.StatusCancelled
	expect := order.Status
	upd := repository.OrderStatusUpdate{
		Status:             &status,
		CancelledAt:        &now,
		CancellationReason: &reason,
		ExpectStatus:       &expect,
	}
	if err := s.orders.UpdateStatus(ctx, orderID, upd); err != nil {
		return nil, err
	}

	// Return the reserved units to stock.
	for _, item := range order.Items {
		if err := s.guard.Release(ctx, item.ProductID, item.Quantity); err != nil {
			slog.Error("Failed to restock cancelled order line", "order_id", orderID, "product_id", item.ProductID, "err", err)
		}
	}

	order.Status = entity.StatusCancelled
	order.CancelledAt = &now
	order.CancellationReason = reason
	order.UpdatedAt = now

	s.publishStatusChanged(ctx, order)
	return order, nil
}

// AdminStatusUpdate carries the fields a privileged actor may change.
type AdminStatusUpdate struct {
	Status           *entity.OrderStatus
	PaymentStatus    *entity.PaymentStatus
	PaymentReference *string
	TrackingNumber   *string
}

// UpdateStatus applies an admin-driven lifecycle or payment update. Status
// changes must follow the transition table; terminal orders accept no
// further status writes. Payment status may move independently.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, in AdminStatusUpdate) (*entity.Order, error) {
	if in.Status == nil && in.PaymentStatus == nil && in.PaymentReference == nil && in.TrackingNumber == nil {
		return nil, &entity.ValidationError{Field: "status", Message: "nothing to update"}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	upd := repository.OrderStatusUpdate{
		PaymentReference: in.PaymentReference,
		TrackingNumber:   in.TrackingNumber,
	}

	if in.Status != nil {
		if !entity.ValidStatus(*in.Status) {
			return nil, &entity.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", *in.Status)}
		}
		if *in.Status == entity.StatusCancelled {
			return nil, &entity.ValidationError{Field: "status", Message: "cancellation goes through the cancel endpoint"}
		}
		if !entity.CanTransition(order.Status, *in.Status) {
			return nil, &entity.InvalidTransitionError{From: order.Status, To: *in.Status}
		}
		upd.Status = in.Status
		if *in.Status == entity.StatusDelivered {
			upd.DeliveredAt = &now
		}
	}

	if in.PaymentStatus != nil {
		if !entity.ValidPaymentStatus(*in.PaymentStatus) {
			return nil, &entity.ValidationError{Field: "payment_status", Message: fmt.Sprintf("unknown payment status %q", *in.PaymentStatus)}
		}
		upd.PaymentStatus = in.PaymentStatus
	}

	if err := s.orders.UpdateStatus(ctx, orderID, upd); err != nil {
		return nil, err
	}

	if upd.Status != nil {
		order.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		order.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentReference != nil {
		order.PaymentReference = *upd.PaymentReference
	}
	if upd.TrackingNumber != nil {
		order.TrackingNumber = *upd.TrackingNumber
	}
	if upd.DeliveredAt != nil {
		order.DeliveredAt = upd.DeliveredAt
	}
	order.UpdatedAt = now

	s.publishStatusChanged(ctx, order)
	return order, nil
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *entity.Order) {
	event := entity.OrderStatusChanged{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		ChangedAt:     order.UpdatedAt,
	}
	if err := s.publisher.PublishEvent(ctx, TopicOrderStatusChanged, order.ID, event); err != nil {
		slog.Error("Failed to publish OrderStatusChanged", "order_id", order.ID, "err", err)
	}
}

func (s *OrderService) invalidateCart(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		slog.Warn("Cart cache invalidation failed", "user_id", userID, "err", err)
	}
}

func validateCheckoutInput(in CheckoutInput) error {
	required := []struct {
		field string
		value string
	}{
		{"contact_info.first_name", in.ContactInfo.FirstName},
		{"contact_info.last_name", in.ContactInfo.LastName},
		{"contact_info.email", in.ContactInfo.Email},
		{"contact_info.phone", in.ContactInfo.Phone},
		{"contact_info.national_id", in.ContactInfo.NationalID},
		{"shipping_address.street", in.ShippingAddress.Street},
		{"shipping_address.number", in.ShippingAddress.Number},
		{"shipping_address.city", in.ShippingAddress.City},
		{"shipping_address.province", in.ShippingAddress.Province},
		{"shipping_address.postal_code", in.ShippingAddress.PostalCode},
		{"shipping_address.country", in.ShippingAddress.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &entity.ValidationError{Field: f.field, Message: "is required"}
		}
	}
	if !strings.Contains(in.ContactInfo.Email, "@") {
		return &entity.ValidationError{Field: "contact_info.email", Message: "is not a valid email"}
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return &entity.ValidationError{Field: "payment_method", Message: fmt.Sprintf("unknown payment method %q", in.PaymentMethod)}
	}
	return nil
}
