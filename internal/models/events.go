package models

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/uuidcodec"
)

// Event types
const (
	EventTypeOrderCreated = "ORDER_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published after the order transaction commits
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       uuidcodec.ID    `json:"order_id"`
	UserID        uuidcodec.ID    `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItemData `json:"items"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID uuidcodec.ID    `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
