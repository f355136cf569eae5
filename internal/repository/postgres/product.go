package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, image_url, category, status, stock"

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Status, &p.Stock)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", id, err)
	}
	return p, nil
}

// DecrementStock is the single point where stock is reserved. The check and
// the write are one conditional UPDATE, so concurrent buyers racing for the
// last units cannot both succeed.
func (r *productRepository) DecrementStock(ctx context.Context, id string, qty int) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE products SET stock = stock - $1
		 WHERE id = $2 AND status = 'active' AND stock >= $1
		 RETURNING `+productColumns,
		qty, id,
	)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		// Condition failed: missing, inactive or not enough stock.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrement stock for %s: %w", id, err)
	}
	return p, nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1 WHERE id = $2",
		qty, id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment stock for %s: %w", id, err)
	}
	return nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, p := range products {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO products (id, name, description, price, image_url, category, status, stock) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Status, p.Stock,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
