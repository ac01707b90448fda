package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"commerce-backend/internal/service"
	"commerce-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	users   *service.UserService
	catalog *service.CatalogService
	orders  *service.OrderService
}

// NewHandler creates a new HTTP handler
func NewHandler(users *service.UserService, catalog *service.CatalogService, orders *service.OrderService) *Handler {
	return &Handler{
		users:   users,
		catalog: catalog,
		orders:  orders,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/", h.welcome)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.GET("", h.listUsers)
		users.POST("", h.createUser)
		users.GET("/:userId", h.getUser)
		users.PUT("/:userId", h.updateUser)
		users.GET("/:userId/orders", h.listUserOrders)
	}

	products := api.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.createProduct)
		products.GET("/:productId", h.getProduct)
		products.PUT("/:productId", h.updateProduct)
		products.GET("/:productId/buyers", h.listProductBuyers)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.POST("", h.createOrder)
		orders.GET("/:orderId", h.getOrder)
		orders.PUT("/:orderId/:productId", h.updateOrder)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/weekly-orders", h.weeklyOrders)
		reports.GET("/total-stock", h.totalStock)
	}
}

func (h *Handler) welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome To The E-Commerce Application.",
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps the service error taxonomy onto HTTP statuses:
// missing entities are 404, business-rule and validation failures are
// 400, everything else is a store failure logged in full and surfaced
// generically as 500.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient stock for the requested quantity"})
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		util.GetLogger().Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unexpected server error"})
	}
}

// pathID parses a positive integer path parameter, responding 400 and
// returning false when it is malformed
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
