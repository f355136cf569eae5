package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (
			id, order_number, user_id,
			contact_first_name, contact_last_name, contact_email, contact_phone, contact_national_id,
			ship_street, ship_number, ship_floor, ship_apartment, ship_city, ship_province, ship_postal_code, ship_country,
			payment_method, subtotal, shipping_cost, total, status, payment_status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		order.ID, order.OrderNumber, order.UserID,
		order.ContactInfo.FirstName, order.ContactInfo.LastName, order.ContactInfo.Email,
		order.ContactInfo.Phone, order.ContactInfo.NationalID,
		order.ShippingAddress.Street, order.ShippingAddress.Number, order.ShippingAddress.Floor,
		order.ShippingAddress.Apartment, order.ShippingAddress.City, order.ShippingAddress.Province,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.Subtotal, order.ShippingCost, order.Total,
		order.Status, order.PaymentStatus, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, variant_id, name, price, quantity, subtotal) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			order.ID, item.ProductID, item.VariantID, item.Name, item.Price, item.Quantity, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const orderColumns = `id, order_number, user_id,
	contact_first_name, contact_last_name, contact_email, contact_phone, contact_national_id,
	ship_street, ship_number, ship_floor, ship_apartment, ship_city, ship_province, ship_postal_code, ship_country,
	payment_method, subtotal, shipping_cost, total, status, payment_status, payment_reference, tracking_number,
	created_at, updated_at, cancelled_at, cancellation_reason, delivered_at`

func scanOrder(row interface{ Scan(...any) error }) (*entity.Order, error) {
	var o entity.Order
	var cancelledAt, deliveredAt sql.NullTime
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.ContactInfo.FirstName, &o.ContactInfo.LastName, &o.ContactInfo.Email,
		&o.ContactInfo.Phone, &o.ContactInfo.NationalID,
		&o.ShippingAddress.Street, &o.ShippingAddress.Number, &o.ShippingAddress.Floor,
		&o.ShippingAddress.Apartment, &o.ShippingAddress.City, &o.ShippingAddress.Province,
		&o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.PaymentMethod, &o.Subtotal, &o.ShippingCost, &o.Total,
		&o.Status, &o.PaymentStatus, &o.PaymentReference, &o.TrackingNumber,
		&o.CreatedAt, &o.UpdatedAt, &cancelledAt, &o.CancellationReason, &deliveredAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		o.CancelledAt = &cancelledAt.Time
	}
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	return &o, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", id, err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	return r.findMany(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, limit,
	)
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	return r.findMany(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC LIMIT $1",
		limit,
	)
}

func (r *orderRepository) findMany(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, variant_id, name, price, quantity, subtotal FROM order_items WHERE order_id = $1 ORDER BY id",
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Name, &item.Price, &item.Quantity, &item.Subtotal); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, upd repository.OrderStatusUpdate) error {
	query := "UPDATE orders SET updated_at = NOW()"
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, idx)
		args = append(args, value)
		idx++
	}

	if upd.Status != nil {
		set("status", *upd.Status)
	}
	if upd.PaymentStatus != nil {
		set("payment_status", *upd.PaymentStatus)
	}
	if upd.PaymentReference != nil {
		set("payment_reference", *upd.PaymentReference)
	}
	if upd.TrackingNumber != nil {
		set("tracking_number", *upd.TrackingNumber)
	}
	if upd.CancelledAt != nil {
		set("cancelled_at", *upd.CancelledAt)
	}
	if upd.CancellationReason != nil {
		set("cancellation_reason", *upd.CancellationReason)
	}
	if upd.DeliveredAt != nil {
		set("delivered_at", *upd.DeliveredAt)
	}

	query += fmt.Sprintf(" WHERE id = $%d", idx)
	args = append(args, id)
	idx++

	if upd.ExpectStatus != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *upd.ExpectStatus)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		if upd.ExpectStatus == nil {
			return entity.ErrOrderNotFound
		}
		// The conditional write matched nothing: either the order is gone or
		// a concurrent writer moved it out of the expected status first.
		var current entity.OrderStatus
		err := r.db.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = $1", id).Scan(&current)
		if err == sql.ErrNoRows {
			return entity.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query order %s: %w", id, err)
		}
		to := current
		if upd.Status != nil {
			to = *upd.Status
		}
		return &entity.InvalidTransitionError{From: current, To: to}
	}
	return nil
}
