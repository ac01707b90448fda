package api

import (
	"net/http"

	"commerce-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order placement
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order Placed Successfully.",
		"order":   order,
	})
}

// getOrder handles fetching a single order
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"order":   order,
	})
}

// listOrders handles fetching all orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "All orders retrieved successfully",
		"orders":  orders,
	})
}

// updateOrder handles order revision and cancellation
func (h *Handler) updateOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), orderID, productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order Updated Successfully",
		"order":   order,
	})
}

// weeklyOrders handles the past-7-days report (served through the cache)
func (h *Handler) weeklyOrders(c *gin.Context) {
	orders, err := h.orders.WeeklyOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Last 7 days orders retrieved successfully",
		"orders":  orders,
	})
}

// totalStock handles the total stock aggregation
func (h *Handler) totalStock(c *gin.Context) {
	total, err := h.catalog.TotalStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Total stock retrieved successfully",
		"total_stock": total,
	})
}
