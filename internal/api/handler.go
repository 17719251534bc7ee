package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/service"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/uuidcodec"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Response is the envelope every endpoint returns. The shape is fixed so
// clients never sniff for whichever field happens to be present.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Handler contains HTTP handlers
type Handler struct {
	orderService   *service.OrderService
	catalogService *service.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, catalogService *service.CatalogService) *Handler {
	return &Handler{
		orderService:   orderService,
		catalogService: catalogService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.createOrder)
		v1.GET("/orders/:id", h.getOrder)
		v1.GET("/orders/user/:userId", h.getOrdersByUser)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
	}
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

// createOrder handles order placement
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body: " + err.Error()})
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, Response{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Message: "Order created", Data: resp})
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	id, err := uuidcodec.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid order ID"})
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "OK", Data: order})
}

// getOrdersByUser handles a user's order history
func (h *Handler) getOrdersByUser(c *gin.Context) {
	userID, err := uuidcodec.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid user ID"})
		return
	}

	orders, err := h.orderService.GetOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "OK", Data: orders})
}

// getProduct handles a single catalog read with resolved discount
func (h *Handler) getProduct(c *gin.Context) {
	id, err := uuidcodec.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "OK", Data: product})
}

// listProducts handles filtered catalog pages
func (h *Handler) listProducts(c *gin.Context) {
	var filter store.ProductFilter

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid category_id"})
			return
		}
		filter.CategoryID = &id
	}
	if v := c.Query("product_type_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid product_type_id"})
			return
		}
		filter.ProductTypeID = &id
	}
	if v := c.Query("is_visible"); v != "" {
		visible := v == "true" || v == "1"
		filter.IsVisible = &visible
	}
	if v := c.Query("is_best_seller"); v != "" {
		best := v == "true" || v == "1"
		filter.IsBestSeller = &best
	}
	if v := c.Query("gender"); v != "" {
		filter.Gender = &v
	}

	sortBy := c.DefaultQuery("sort_by", "created_at")
	sortOrder := c.DefaultQuery("sort_order", "DESC")

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter, sortBy, sortOrder)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "OK", Data: products})
}

// statusForError maps core error sentinels to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, uuidcodec.ErrInvalidFormat),
		errors.Is(err, uuidcodec.ErrInvalidLength):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
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
