package store

import (
	"context"
	"database/sql"

	"commerce-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// FindOrCreateCategory returns the category with the given name,
// creating it if it does not exist. Idempotent under concurrent calls:
// the upsert always returns the surviving row.
func (s *Store) FindOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var category models.Category
	if err := s.db.GetContext(ctx, &category, query, name); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, category_id, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.CategoryID, product.Price, product.Stock)
}

// GetProductByID retrieves a product by ID, nil if absent
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByNameAndCategory retrieves a product by its unique
// (name, category) pair, nil if absent
func (s *Store) GetProductByNameAndCategory(ctx context.Context, name string, categoryID int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE name = $1 AND category_id = $2", name, categoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY id")
	return products, err
}

// UpdateProduct persists a product's mutable fields
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = $1, category_id = $2, price = $3, stock = $4 WHERE id = $5",
		product.Name, product.CategoryID, product.Price, product.Stock, product.ID)
	return err
}

// TotalStock returns the sum of stock across all products, 0 when the
// catalog is empty
func (s *Store) TotalStock(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(stock), 0) FROM products")
	return total, err
}

// AdjustStock applies a signed stock delta if the result stays
// non-negative. Returns false when the floor check rejects the change.
// The single conditional UPDATE makes concurrent adjustments safe
// without a read-modify-write window.
func (s *Store) AdjustStock(ctx context.Context, productID int64, delta int) (bool, error) {
	return adjustStock(ctx, s.db, productID, delta)
}

func adjustStock(ctx context.Context, e sqlx.ExecerContext, productID int64, delta int) (bool, error) {
	res, err := e.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1 WHERE id = $2 AND stock + $1 >= 0",
		delta, productID)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
