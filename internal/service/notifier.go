package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopcore/storefront/internal/entity"
)

// Notifier consumes order events and records the notifications a delivery
// system (email, invoicing) would pick up. Actual delivery is out of scope.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// HandleOrderPlaced is wired as the consumer handler for TopicOrderPlaced.
func (n *Notifier) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced: %w", err)
	}

	slog.Info("Notification: order placed",
		"order_id", event.OrderID,
		"order_number", event.OrderNumber,
		"user_id", event.UserID,
		"items", len(event.Items),
		"total", event.Total,
	)
	return nil
}

// HandleOrderStatusChanged is wired as the consumer handler for
// TopicOrderStatusChanged.
func (n *Notifier) HandleOrderStatusChanged(ctx context.Context, payload []byte) error {
	var event entity.OrderStatusChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal OrderStatusChanged: %w", err)
	}

	slog.Info("Notification: order status changed",
		"order_id", event.OrderID,
		"order_number", event.OrderNumber,
		"status", event.Status,
		"payment_status", event.PaymentStatus,
	)
	return nil
}
