package models

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/uuidcodec"
)

// Product represents a product in the catalog. DiscountPrice is resolved
// at read time from the attached promotions and is never persisted.
type Product struct {
	ID            uuidcodec.ID     `db:"id" json:"id"`
	Name          string           `db:"name" json:"name"`
	Description   *string          `db:"description" json:"description"`
	Price         decimal.Decimal  `db:"price" json:"price"`
	DiscountPrice *decimal.Decimal `db:"-" json:"discount_price"`
	Views         int64            `db:"views" json:"views"`
	Brand         *string          `db:"brand" json:"brand"`
	Color         *string          `db:"color" json:"color"`
	Material      *string          `db:"material" json:"material"`
	Gender        *string          `db:"gender" json:"gender"`
	IsBestSeller  bool             `db:"is_best_seller" json:"is_best_seller"`
	IsVisible     bool             `db:"is_visible" json:"is_visible"`
	CategoryID    *int64           `db:"category_id" json:"category_id"`
	ProductTypeID *int64           `db:"product_type_id" json:"product_type_id"`
	CategoryName  *string          `db:"category_name" json:"category_name"`
	TypeName      *string          `db:"product_type_name" json:"product_type_name"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`

	Images     []ProductImage `db:"-" json:"images"`
	Sizes      []ProductSize  `db:"-" json:"sizes"`
	Promotions []Promotion    `db:"-" json:"promotions"`
}

// ProductImage represents one image attached to a product.
type ProductImage struct {
	ID          uuidcodec.ID `db:"id" json:"id"`
	ProductID   uuidcodec.ID `db:"product_id" json:"product_id"`
	ImageURL    *string      `db:"image_url" json:"image_url"`
	IsThumbnail bool         `db:"is_thumbnail" json:"is_thumbnail"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ProductSize represents a size row with its stock count.
type ProductSize struct {
	ID        uuidcodec.ID `db:"id" json:"id"`
	ProductID uuidcodec.ID `db:"product_id" json:"product_id"`
	SizeID    int64        `db:"size_id" json:"size_id"`
	SizeValue string       `db:"size_value" json:"size_value"`
	Stock     int          `db:"stock" json:"stock"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Promotion discount types
const (
	DiscountTypePercent = "PERCENT"
	DiscountTypeAmount  = "AMOUNT"
)

// Promotion represents a time-boxed discount rule attached to products.
type Promotion struct {
	ID            uuidcodec.ID    `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   *string         `db:"description" json:"description"`
	DiscountType  string          `db:"discount_type" json:"discount_type"`
	DiscountValue decimal.Decimal `db:"discount_value" json:"discount_value"`
	StartDate     time.Time       `db:"start_date" json:"start_date"`
	EndDate       time.Time       `db:"end_date" json:"end_date"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment methods
const (
	PaymentMethodCash    = "cash"
	PaymentMethodMomo    = "momo"
	PaymentMethodZalopay = "zalopay"
	PaymentMethodBank    = "bank"
)

// Order represents a customer order. TotalAmount is computed once at
// creation from the line items and is never recomputed on read.
type Order struct {
	ID             uuidcodec.ID    `db:"id" json:"id"`
	UserID         uuidcodec.ID    `db:"user_id" json:"user_id"`
	OrderAddressID uuidcodec.ID    `db:"order_address_id" json:"order_address_id"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status         string          `db:"status" json:"status"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	Note           *string         `db:"note" json:"note"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`

	Items   []OrderItem   `db:"-" json:"items,omitempty"`
	Address *OrderAddress `db:"-" json:"address,omitempty"`
}

// OrderItem is a durable price snapshot for one product/size line.
// Price is the charged unit price, discount already applied by the cart.
type OrderItem struct {
	ID           uuidcodec.ID    `db:"id" json:"id"`
	OrderID      uuidcodec.ID    `db:"order_id" json:"order_id"`
	ProductID    uuidcodec.ID    `db:"product_id" json:"product_id"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
	SizeValue    *string         `db:"size_value" json:"size_value"`
	ProductName  *string         `db:"product_name" json:"product_name"`
	ProductImage *string         `db:"product_image" json:"product_image"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderAddress is the shipping destination snapshot owned by one order.
type OrderAddress struct {
	ID              uuidcodec.ID `db:"id" json:"id"`
	FullAddressLine string       `db:"full_address_line" json:"full_address_line"`
	HouseNumber     *string      `db:"house_number" json:"house_number"`
	StreetName      *string      `db:"street_name" json:"street_name"`
	Neighborhood    *string      `db:"neighborhood" json:"neighborhood"`
	Ward            *string      `db:"ward" json:"ward"`
	City            *string      `db:"city" json:"city"`
	Country         string       `db:"country" json:"country"`
	RecipientName   string       `db:"recipient_name" json:"recipient_name"`
	RecipientPhone  string       `db:"recipient_phone" json:"recipient_phone"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}

// ProcessedEvent records broker events already applied, for dedupe.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
