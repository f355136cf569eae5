package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new CartRepository backed by Postgres.
func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Get(ctx context.Context, userID string) ([]entity.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, variant_id, quantity, added_at FROM cart_items WHERE user_id = $1 ORDER BY added_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var item entity.CartItem
		if err := rows.Scan(&item.ProductID, &item.VariantID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddItem merges via upsert so a duplicate (product, variant) key sums
// quantities instead of inserting a second line.
func (r *cartRepository) AddItem(ctx context.Context, userID string, item entity.CartItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, variant_id, quantity, added_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, product_id, variant_id)
		 DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, item.ProductID, item.VariantID, item.Quantity, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID, variantID string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE user_id = $2 AND product_id = $3 AND variant_id = $4",
		qty, userID, productID, variantID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID, variantID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND variant_id = $3",
		userID, productID, variantID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
