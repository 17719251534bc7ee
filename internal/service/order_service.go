package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
	"storefront-service/internal/uuidcodec"
)

// ErrValidation is returned for requests rejected before any transaction
// is opened: empty line items, bad quantities, missing address fields.
var ErrValidation = errors.New("validation failed")

// Online payment methods get a redirect URL; the rest settle offline.
var onlinePaymentMethods = map[string]bool{
	models.PaymentMethodMomo:    true,
	models.PaymentMethodZalopay: true,
}

var validPaymentMethods = map[string]bool{
	models.PaymentMethodCash:    true,
	models.PaymentMethodMomo:    true,
	models.PaymentMethodZalopay: true,
	models.PaymentMethodBank:    true,
}

// OrderService handles order placement
type OrderService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	gatewayBaseURL string
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher, gatewayBaseURL string) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		gatewayBaseURL: gatewayBaseURL,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to place an order. Prices arrive
// pre-resolved from the caller's cart state; this service never consults
// the live catalog for them.
type CreateOrderRequest struct {
	UserID        string              `json:"user_id" binding:"required"`
	Address       OrderAddressRequest `json:"address" binding:"required"`
	Items         []OrderItemRequest  `json:"items" binding:"required,min=1"`
	PaymentMethod string              `json:"payment_method" binding:"required"`
	Note          *string             `json:"note,omitempty"`
}

// OrderAddressRequest represents the shipping address payload
type OrderAddressRequest struct {
	FullAddressLine string  `json:"full_address_line" binding:"required"`
	HouseNumber     *string `json:"house_number,omitempty"`
	StreetName      *string `json:"street_name,omitempty"`
	Neighborhood    *string `json:"neighborhood,omitempty"`
	Ward            *string `json:"ward,omitempty"`
	City            *string `json:"city,omitempty"`
	Country         string  `json:"country,omitempty"`
	RecipientName   string  `json:"recipient_name" binding:"required"`
	RecipientPhone  string  `json:"recipient_phone" binding:"required"`
}

// OrderItemRequest represents one cart line in an order
type OrderItemRequest struct {
	ProductID    string          `json:"product_id" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	Price        decimal.Decimal `json:"price"`
	SizeValue    string          `json:"size_value"`
	ProductName  string          `json:"product_name"`
	ProductImage *string         `json:"product_image,omitempty"`
}

// CreateOrderResponse represents the response after placing an order.
// PaymentURL is present only for online payment methods.
type CreateOrderResponse struct {
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	PaymentURL *string `json:"payment_url,omitempty"`
}

// CreateOrder validates the request, runs the atomic order transaction,
// and synthesizes a payment redirect for online methods. On any storage
// failure the transaction has already rolled back; the caller keeps its
// cart state and may retry.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	userID, err := uuidcodec.Parse(req.UserID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_user_id").Inc()
		return nil, err
	}

	items, err := s.validateRequest(req)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	order := &models.Order{
		UserID:        userID,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	}
	address := &models.OrderAddress{
		FullAddressLine: req.Address.FullAddressLine,
		HouseNumber:     req.Address.HouseNumber,
		StreetName:      req.Address.StreetName,
		Neighborhood:    req.Address.Neighborhood,
		Ward:            req.Address.Ward,
		City:            req.Address.City,
		Country:         req.Address.Country,
		RecipientName:   req.Address.RecipientName,
		RecipientPhone:  req.Address.RecipientPhone,
	}

	start := time.Now()
	if err := s.store.CreateOrderTx(ctx, order, address, items); err != nil {
		util.OrdersFailedTotal.WithLabelValues("storage").Inc()
		return nil, err
	}
	util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	util.OrdersCreatedTotal.Inc()

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("item_count", len(items)))

	s.publishOrderCreated(ctx, order)

	resp := &CreateOrderResponse{
		OrderID: order.ID.String(),
		Status:  order.Status,
	}

	if onlinePaymentMethods[req.PaymentMethod] {
		url := fmt.Sprintf("%s?order_id=%s&amount=%s",
			s.gatewayBaseURL, order.ID, order.TotalAmount)
		resp.PaymentURL = &url
		util.PaymentRedirectsTotal.WithLabelValues(req.PaymentMethod).Inc()
	}

	return resp, nil
}

// validateRequest rejects bad payloads before any transaction is opened.
func (s *OrderService) validateRequest(req *CreateOrderRequest) ([]models.OrderItem, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no line items", ErrValidation)
	}
	if !validPaymentMethods[req.PaymentMethod] {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if req.Address.FullAddressLine == "" || req.Address.RecipientName == "" || req.Address.RecipientPhone == "" {
		return nil, fmt.Errorf("%w: address requires full_address_line, recipient_name, recipient_phone", ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuidcodec.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %d quantity must be at least 1", ErrValidation, i)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item %d price must not be negative", ErrValidation, i)
		}

		out := models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.SizeValue != "" {
			v := item.SizeValue
			out.SizeValue = &v
		}
		if item.ProductName != "" {
			v := item.ProductName
			out.ProductName = &v
		}
		out.ProductImage = item.ProductImage

		items = append(items, out)
	}

	return items, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	if s.eventPublisher == nil {
		return
	}

	itemData := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		itemData = append(itemData, models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		Items:         itemData,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}

// GetOrder retrieves an order with its items and address
func (s *OrderService) GetOrder(ctx context.Context, id uuidcodec.ID) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, id)
}

// GetOrdersByUser retrieves a user's order history, newest first
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uuidcodec.ID) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}
