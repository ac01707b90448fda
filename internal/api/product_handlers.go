package api

import (
	"net/http"

	"commerce-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product Created Successfully.",
		"product": product,
	})
}

// getProduct handles fetching a single product
func (h *Handler) getProduct(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"product": product,
	})
}

// listProducts handles fetching all products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "All products retrieved successfully",
		"products": products,
	})
}

// updateProduct handles product updates
func (h *Handler) updateProduct(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product Updated Successfully",
		"product": product,
	})
}

// listProductBuyers handles the per-product buyer aggregation
func (h *Handler) listProductBuyers(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	buyers, err := h.orders.ProductBuyers(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product buyers retrieved successfully",
		"buyers":  buyers,
	})
}
