package service

import (
	"context"
	"fmt"
	"time"

	"commerce-backend/internal/cache"
	"commerce-backend/internal/models"
	"commerce-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService carries the order/stock reconciliation logic
type OrderService struct {
	store    OrderStore
	cache    QueryCache
	events   OrderEventPublisher
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, queryCache QueryCache, events OrderEventPublisher, cacheTTL time.Duration) *OrderService {
	return &OrderService{
		store:    store,
		cache:    queryCache,
		events:   events,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	UserID    int64      `json:"user_id" binding:"required"`
	ProductID int64      `json:"product_id" binding:"required"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	OrderDate *time.Time `json:"order_date,omitempty"`
}

// UpdateOrderRequest represents a request to revise or cancel an
// order. Absent fields fall back to: current quantity, now, placed.
type UpdateOrderRequest struct {
	Quantity  *int       `json:"quantity,omitempty"`
	OrderDate *time.Time `json:"order_date,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

// PlaceOrder creates an order, decrementing the product's stock by the
// ordered quantity. The decrement and the order insert share one
// transaction, so no failure path mutates stock.
func (s *OrderService) PlaceOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		util.OrdersRejectedTotal.WithLabelValues("user_not_found").Inc()
		return nil, &NotFoundError{Entity: "user"}
	}

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		util.OrdersRejectedTotal.WithLabelValues("product_not_found").Inc()
		return nil, &NotFoundError{Entity: "product"}
	}

	if req.Quantity > product.Stock {
		util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, ErrInsufficientStock
	}

	orderDate := s.now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order := &models.Order{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		OrderDate: orderDate,
		Status:    models.OrderStatusPlaced,
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if !created {
		// the conditional decrement lost a race after our stock read
		util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, ErrInsufficientStock
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", order.ProductID),
		zap.Int("quantity", order.Quantity))

	s.invalidateOrderQueries(ctx)
	s.publishPlaced(ctx, order)

	return order, nil
}

// UpdateOrder revises an order, re-deriving the stock delta from the
// change. Cancellation restocks the pre-update quantity and zeroes the
// order; a placed-to-placed quantity change applies the signed
// difference; transitions among dispatched/shipped/delivered leave
// stock untouched.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID, productID int64, req *UpdateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "order"}
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product"}
	}

	status := models.OrderStatusPlaced
	if req.Status != nil {
		status = *req.Status
	}
	if !models.ValidOrderStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + status}
	}

	orderDate := s.now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	quantity := order.Quantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	if status == models.OrderStatusCancelled {
		return s.cancelOrder(ctx, order, productID, orderDate)
	}

	if quantity > product.Stock {
		util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, ErrInsufficientStock
	}

	// Stock moves only while the order is placed; once it is
	// dispatched, shipped or delivered, quantity edits persist
	// without touching inventory.
	delta := 0
	if status == models.OrderStatusPlaced {
		delta = order.Quantity - quantity
	}

	updated := &models.Order{
		ID:        order.ID,
		UserID:    order.UserID,
		ProductID: productID,
		Quantity:  quantity,
		OrderDate: orderDate,
		Status:    status,
	}

	applied, err := s.store.ApplyOrderUpdate(ctx, updated, productID, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if !applied {
		util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, ErrInsufficientStock
	}

	util.OrdersUpdatedTotal.Inc()
	if delta > 0 {
		util.StockRestockedUnits.Add(float64(delta))
	}
	s.logger.Info("Order updated",
		zap.Int64("order_id", updated.ID),
		zap.String("status", updated.Status),
		zap.Int("quantity", updated.Quantity),
		zap.Int("stock_delta", delta))

	s.invalidateOrderQueries(ctx)
	s.publishUpdated(ctx, updated)

	return updated, nil
}

// cancelOrder soft-cancels: stock gets the order's pre-update quantity
// back, the order's quantity drops to zero and the record is kept.
// Zeroing the quantity is what makes the restock one-shot; a repeated
// cancel returns nothing further.
func (s *OrderService) cancelOrder(ctx context.Context, order *models.Order, productID int64, orderDate time.Time) (*models.Order, error) {
	restock := order.Quantity

	cancelled := &models.Order{
		ID:        order.ID,
		UserID:    order.UserID,
		ProductID: productID,
		Quantity:  0,
		OrderDate: orderDate,
		Status:    models.OrderStatusCancelled,
	}

	applied, err := s.store.ApplyOrderUpdate(ctx, cancelled, productID, restock)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("cancellation not applied for order %d", order.ID)
	}

	util.OrdersCancelledTotal.Inc()
	if restock > 0 {
		util.StockRestockedUnits.Add(float64(restock))
	}
	s.logger.Info("Order cancelled",
		zap.Int64("order_id", order.ID),
		zap.Int("restocked", restock))

	s.invalidateOrderQueries(ctx)
	s.publishCancelled(ctx, cancelled, restock)

	return cancelled, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "order"}
	}
	return order, nil
}

// ListOrders retrieves all orders, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.GetOrders(ctx)
}

// ListUserOrders retrieves a user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Entity: "user"}
	}
	return s.store.GetOrdersByUserID(ctx, userID)
}

// WeeklyOrders retrieves the orders of the past 7 days, newest first,
// through the query cache. Results may lag mutations by up to the TTL.
func (s *OrderService) WeeklyOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.WeeklyOrders")
	defer span.End()

	var orders []models.Order
	err := s.cache.GetOrCompute(ctx, cache.KeyWeeklyOrders, s.cacheTTL, &orders,
		func(ctx context.Context) (interface{}, error) {
			to := s.now()
			from := to.AddDate(0, 0, -7)
			return s.store.GetOrdersBetween(ctx, from, to)
		})
	return orders, err
}

// ProductBuyers retrieves the distinct users who ever ordered the
// product, each once regardless of order count
func (s *OrderService) ProductBuyers(ctx context.Context, productID int64) ([]models.Buyer, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product"}
	}

	buyers, err := s.store.GetBuyersByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if buyers == nil {
		buyers = []models.Buyer{}
	}
	return buyers, nil
}

func (s *OrderService) invalidateOrderQueries(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.KeyWeeklyOrders); err != nil {
		s.logger.Warn("Failed to invalidate order query cache", zap.Error(err))
	}
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	event := &models.OrderPlacedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:   order.ID,
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		OrderDate: order.OrderDate,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

func (s *OrderService) publishUpdated(ctx context.Context, order *models.Order) {
	event := &models.OrderUpdatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderUpdated),
		OrderID:   order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Status:    order.Status,
	}
	if err := s.events.PublishOrderUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderUpdated event", zap.Error(err))
	}
}

func (s *OrderService) publishCancelled(ctx context.Context, order *models.Order, restocked int) {
	event := &models.OrderCancelledEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderCancelled),
		OrderID:   order.ID,
		ProductID: order.ProductID,
		Restocked: restocked,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
