package service

import (
	"context"
	"encoding/json"
	"time"

	"commerce-backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockOrderStore is a testify mock of OrderStore for error-path tests
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockOrderStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderStore) ApplyOrderUpdate(ctx context.Context, order *models.Order, stockProductID int64, stockDelta int) (bool, error) {
	args := m.Called(ctx, order, stockProductID, stockDelta)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderStore) GetOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderStore) GetOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	args := m.Called(ctx, from, to)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderStore) GetBuyersByProductID(ctx context.Context, productID int64) ([]models.Buyer, error) {
	args := m.Called(ctx, productID)
	buyers, _ := args.Get(0).([]models.Buyer)
	return buyers, args.Error(1)
}

// MockUserStore is a testify mock of UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserStore) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockCatalogStore is a testify mock of CatalogStore
type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) FindOrCreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCatalogStore) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogStore) GetProductByNameAndCategory(ctx context.Context, name string, categoryID int64) (*models.Product, error) {
	args := m.Called(ctx, name, categoryID)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogStore) GetProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockCatalogStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogStore) TotalStock(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher is a testify mock of OrderEventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishOrderUpdated(ctx context.Context, event *models.OrderUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// passthroughCache bypasses caching: every read computes, and
// invalidated keys are recorded for assertions
type passthroughCache struct {
	invalidated []string
}

func (c *passthroughCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func(ctx context.Context) (interface{}, error)) error {
	fresh, err := compute(ctx)
	if err != nil {
		return err
	}
	buf, err := json.Marshal(fresh)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, dest)
}

func (c *passthroughCache) Invalidate(ctx context.Context, keys ...string) error {
	c.invalidated = append(c.invalidated, keys...)
	return nil
}

// nopPublisher discards events
type nopPublisher struct{}

func (nopPublisher) PublishOrderPlaced(context.Context, *models.OrderPlacedEvent) error { return nil }
func (nopPublisher) PublishOrderUpdated(context.Context, *models.OrderUpdatedEvent) error {
	return nil
}
func (nopPublisher) PublishOrderCancelled(context.Context, *models.OrderCancelledEvent) error {
	return nil
}
