package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront-service/internal/models"
	"storefront-service/internal/uuidcodec"
)

// CreateOrderTx persists an order as one atomic unit of work: the shipping
// address, the order header with the total computed from the submitted
// items, and one row per line item. Any failure rolls the whole unit back
// and surfaces wrapped in ErrOrderCreation. On success the passed structs
// carry their assigned identifiers and the order its computed total.
func (s *Store) CreateOrderTx(ctx context.Context, order *models.Order, address *models.OrderAddress, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrOrderCreation, err)
	}
	defer tx.Rollback()

	address.ID = uuidcodec.New()
	if address.Country == "" {
		address.Country = "Vietnam"
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_addresses (
			id, full_address_line, house_number, street_name, neighborhood,
			ward, city, country, recipient_name, recipient_phone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		address.ID, address.FullAddressLine, address.HouseNumber, address.StreetName,
		address.Neighborhood, address.Ward, address.City, address.Country,
		address.RecipientName, address.RecipientPhone)
	if err != nil {
		return fmt.Errorf("%w: insert address: %v", ErrOrderCreation, err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order.ID = uuidcodec.New()
	order.OrderAddressID = address.ID
	order.TotalAmount = total
	order.Status = models.OrderStatusPending

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, order_address_id, total_amount, status, payment_method, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.UserID, order.OrderAddressID, order.TotalAmount,
		order.Status, order.PaymentMethod, order.Note)
	if err != nil {
		return fmt.Errorf("%w: insert order: %v", ErrOrderCreation, err)
	}

	for i := range items {
		items[i].ID = uuidcodec.New()
		items[i].OrderID = order.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, price, size_value, product_name, product_image
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			items[i].ID, items[i].OrderID, items[i].ProductID, items[i].Quantity,
			items[i].Price, items[i].SizeValue, items[i].ProductName, items[i].ProductImage)
		if err != nil {
			return fmt.Errorf("%w: insert item %d: %v", ErrOrderCreation, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrOrderCreation, err)
	}

	order.Items = items
	order.Address = address
	return nil
}

// GetOrderByID retrieves an order with its items and address
func (s *Store) GetOrderByID(ctx context.Context, id uuidcodec.ID) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.GetOrderItemsByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	address, err := s.GetOrderAddressByID(ctx, order.OrderAddressID)
	if err != nil {
		return nil, err
	}
	order.Address = address

	return &order, nil
}

// GetOrderItemsByOrderID retrieves all line items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID uuidcodec.ID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY created_at, id", orderID)
	return items, err
}

// GetOrderAddressByID retrieves the shipping address owned by an order
func (s *Store) GetOrderAddressByID(ctx context.Context, id uuidcodec.ID) (*models.OrderAddress, error) {
	var address models.OrderAddress
	err := s.db.GetContext(ctx, &address, "SELECT * FROM order_addresses WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order address %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// GetOrdersByUserID retrieves order headers for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID uuidcodec.ID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uuidcodec.ID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return nil
}
