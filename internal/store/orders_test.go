package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"commerce-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateOrder_DecrementAndInsertShareTx(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")).
		WithArgs(3, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(int64(1), int64(10), 3, now, models.OrderStatusPlaced).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))
	mock.ExpectCommit()

	order := &models.Order{
		UserID:    1,
		ProductID: 10,
		Quantity:  3,
		OrderDate: now,
		Status:    models.OrderStatusPlaced,
	}

	created, err := s.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(7), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_InsufficientStockRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1")).
		WithArgs(50, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	order := &models.Order{
		UserID:    1,
		ProductID: 10,
		Quantity:  50,
		OrderDate: time.Now(),
		Status:    models.OrderStatusPlaced,
	}

	created, err := s.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, order.ID, "no order row is written when the decrement is refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyOrderUpdate_WithStockDelta(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET stock = stock + $1 WHERE id = $2 AND stock + $1 >= 0")).
		WithArgs(-2, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE orders SET product_id = $1, quantity = $2, order_date = $3, status = $4, updated_at = NOW() WHERE id = $5")).
		WithArgs(int64(10), 5, now, models.OrderStatusPlaced, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order := &models.Order{
		ID:        7,
		ProductID: 10,
		Quantity:  5,
		OrderDate: now,
		Status:    models.OrderStatusPlaced,
	}

	applied, err := s.ApplyOrderUpdate(context.Background(), order, 10, -2)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyOrderUpdate_ZeroDeltaSkipsStock(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET")).
		WithArgs(int64(10), 3, now, models.OrderStatusShipped, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order := &models.Order{
		ID:        7,
		ProductID: 10,
		Quantity:  3,
		OrderDate: now,
		Status:    models.OrderStatusShipped,
	}

	applied, err := s.ApplyOrderUpdate(context.Background(), order, 10, 0)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyOrderUpdate_FloorCheckRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE products SET stock = stock + $1 WHERE id = $2 AND stock + $1 >= 0")).
		WithArgs(-8, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	order := &models.Order{ID: 7, ProductID: 10, Quantity: 9, OrderDate: time.Now(), Status: models.OrderStatusPlaced}

	applied, err := s.ApplyOrderUpdate(context.Background(), order, 10, -8)
	require.NoError(t, err)
	assert.False(t, applied, "the order row stays untouched when the stock floor refuses the delta")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByID_Missing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM orders WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	order, err := s.GetOrderByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestGetOrdersBetween(t *testing.T) {
	s, mock := newMockStore(t)

	from := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM orders WHERE order_date >= $1 AND order_date <= $2 ORDER BY order_date DESC")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "product_id", "quantity", "order_date", "status", "created_at", "updated_at"}).
			AddRow(int64(2), int64(1), int64(10), 2, to.Add(-time.Hour), "placed", to, to).
			AddRow(int64(1), int64(1), int64(10), 1, from.Add(time.Hour), "placed", from, from))

	orders, err := s.GetOrdersBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].OrderDate.After(orders[1].OrderDate))
}

func TestGetBuyersByProductID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT DISTINCT u.id, u.name, u.email").
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(int64(1), "Ada", "ada@example.com").
			AddRow(int64(2), "Grace", "grace@example.com"))

	buyers, err := s.GetBuyersByProductID(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, buyers, 2)
	assert.Equal(t, "ada@example.com", buyers[0].Email)
}
