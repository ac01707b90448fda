package service

import (
	"context"
	"time"

	"commerce-backend/internal/models"
)

// The store interfaces below are the document-store contract the
// services consume: lookup by id, lookup by filter, insert, update,
// and the aggregation queries. *store.Store satisfies all of them.

// UserStore persists user records
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

// CatalogStore persists categories and products
type CatalogStore interface {
	FindOrCreateCategory(ctx context.Context, name string) (*models.Category, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProductByNameAndCategory(ctx context.Context, name string, categoryID int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	TotalStock(ctx context.Context) (int64, error)
}

// OrderStore persists orders and carries the atomic stock operations
// the reconciliation logic depends on
type OrderStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order) (bool, error)
	ApplyOrderUpdate(ctx context.Context, order *models.Order, stockProductID int64, stockDelta int) (bool, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	GetBuyersByProductID(ctx context.Context, productID int64) ([]models.Buyer, error)
}

// QueryCache is the injected read-through cache for list queries
type QueryCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func(ctx context.Context) (interface{}, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}

// OrderEventPublisher publishes order mutation events
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderUpdated(ctx context.Context, event *models.OrderUpdatedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
}
