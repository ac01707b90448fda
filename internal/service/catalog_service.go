package service

import (
	"context"
	"fmt"

	"commerce-backend/internal/models"
	"commerce-backend/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles products and their lazily created categories
type CatalogService struct {
	store  CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest represents a request to add a product.
// Category is referenced by name and created when unknown.
type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock" binding:"min=0"`
}

// UpdateProductRequest carries optional product updates
type UpdateProductRequest struct {
	Name     *string          `json:"name,omitempty"`
	Category *string          `json:"category,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Stock    *int             `json:"stock,omitempty"`
}

// CreateProduct adds a product, find-or-creating its category and
// rejecting a duplicate (name, category) pair
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if req.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
	}

	category, err := s.store.FindOrCreateCategory(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	existing, err := s.store.GetProductByNameAndCategory(ctx, req.Name, category.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if existing != nil {
		return nil, &ValidationError{Field: "name", Reason: "product already exists in category"}
	}

	product := &models.Product{
		Name:       req.Name,
		CategoryID: category.ID,
		Price:      req.Price,
		Stock:      req.Stock,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("category", category.Name))

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product"}
	}
	return product, nil
}

// ListProducts retrieves all products
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.GetProducts(ctx)
}

// UpdateProduct applies the provided product fields with the same
// validation rules as creation
func (s *CatalogService) UpdateProduct(ctx context.Context, productID int64, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product"}
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		category, err := s.store.FindOrCreateCategory(ctx, *req.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		product.CategoryID = category.ID
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, &ValidationError{Field: "stock", Reason: "must not be negative"}
		}
		product.Stock = *req.Stock
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated", zap.Int64("product_id", product.ID))

	return product, nil
}

// TotalStock returns the sum of stock across all products
func (s *CatalogService) TotalStock(ctx context.Context) (int64, error) {
	return s.store.TotalStock(ctx)
}
