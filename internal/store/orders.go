package store

import (
	"context"
	"database/sql"
	"time"

	"commerce-backend/internal/models"
)

// CreateOrder reserves stock and inserts the order in one transaction.
// The decrement is conditional on sufficient stock; when it does not
// apply the transaction rolls back, no order row is written, and the
// method returns false.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
		order.Quantity, order.ProductID)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	query := `
		INSERT INTO orders (user_id, product_id, quantity, order_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, order, query,
		order.UserID, order.ProductID, order.Quantity, order.OrderDate, order.Status)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// ApplyOrderUpdate persists a revised order and, when stockDelta is
// non-zero, adjusts the stock of stockProductID in the same
// transaction. The adjustment is conditional on stock staying
// non-negative; when it does not apply the transaction rolls back and
// the method returns false.
func (s *Store) ApplyOrderUpdate(ctx context.Context, order *models.Order, stockProductID int64, stockDelta int) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if stockDelta != 0 {
		applied, err := adjustStock(ctx, tx, stockProductID, stockDelta)
		if err != nil {
			return false, err
		}
		if !applied {
			return false, nil
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET product_id = $1, quantity = $2, order_date = $3, status = $4, updated_at = NOW() WHERE id = $5",
		order.ProductID, order.Quantity, order.OrderDate, order.Status, order.ID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// GetOrderByID retrieves an order by ID, nil if absent
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY order_date DESC")
	return orders, err
}

// GetOrdersByUserID retrieves a user's orders, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY order_date DESC", userID)
	return orders, err
}

// GetOrdersBetween retrieves orders whose order_date falls in
// [from, to], newest first
func (s *Store) GetOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE order_date >= $1 AND order_date <= $2 ORDER BY order_date DESC",
		from, to)
	return orders, err
}

// GetBuyersByProductID retrieves the distinct users who placed any
// order for the product, each appearing once
func (s *Store) GetBuyersByProductID(ctx context.Context, productID int64) ([]models.Buyer, error) {
	query := `
		SELECT DISTINCT u.id, u.name, u.email
		FROM users u
		JOIN orders o ON o.user_id = u.id
		WHERE o.product_id = $1
		ORDER BY u.id`

	var buyers []models.Buyer
	err := s.db.SelectContext(ctx, &buyers, query, productID)
	return buyers, err
}
