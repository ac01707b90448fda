package service

import (
	"context"
	"sort"
	"time"

	"commerce-backend/internal/models"
)

// fakeStore is an in-memory OrderStore with the same atomicity
// semantics as the Postgres store: conditional stock adjustments that
// refuse to go below zero, all-or-nothing order writes.
type fakeStore struct {
	users       map[int64]*models.User
	products    map[int64]*models.Product
	orders      map[int64]*models.Order
	nextOrderID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]*models.User),
		products: make(map[int64]*models.Product),
		orders:   make(map[int64]*models.Order),
	}
}

func (f *fakeStore) addUser(u models.User) {
	f.users[u.ID] = &u
}

func (f *fakeStore) addProduct(p models.Product) {
	f.products[p.ID] = &p
}

func (f *fakeStore) stock(productID int64) int {
	return f.products[productID].Stock
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) (bool, error) {
	p, ok := f.products[order.ProductID]
	if !ok || p.Stock < order.Quantity {
		return false, nil
	}
	p.Stock -= order.Quantity

	f.nextOrderID++
	order.ID = f.nextOrderID
	cp := *order
	f.orders[order.ID] = &cp
	return true, nil
}

func (f *fakeStore) ApplyOrderUpdate(_ context.Context, order *models.Order, stockProductID int64, stockDelta int) (bool, error) {
	if stockDelta != 0 {
		p, ok := f.products[stockProductID]
		if !ok || p.Stock+stockDelta < 0 {
			return false, nil
		}
		p.Stock += stockDelta
	}

	cp := *order
	f.orders[order.ID] = &cp
	return true, nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetOrders(_ context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	return orders, nil
}

func (f *fakeStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	all, _ := f.GetOrders(ctx)
	var orders []models.Order
	for _, o := range all {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeStore) GetOrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	all, _ := f.GetOrders(ctx)
	var orders []models.Order
	for _, o := range all {
		if !o.OrderDate.Before(from) && !o.OrderDate.After(to) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeStore) GetBuyersByProductID(_ context.Context, productID int64) ([]models.Buyer, error) {
	seen := make(map[int64]bool)
	var buyers []models.Buyer
	for _, o := range f.orders {
		if o.ProductID != productID || seen[o.UserID] {
			continue
		}
		seen[o.UserID] = true
		u := f.users[o.UserID]
		buyers = append(buyers, models.Buyer{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	sort.Slice(buyers, func(i, j int) bool { return buyers[i].ID < buyers[j].ID })
	return buyers, nil
}
