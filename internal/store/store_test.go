package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
	"storefront-service/internal/uuidcodec"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleOrderInput() (*models.Order, *models.OrderAddress, []models.OrderItem) {
	order := &models.Order{
		UserID:        uuidcodec.New(),
		PaymentMethod: models.PaymentMethodCash,
	}
	address := &models.OrderAddress{
		FullAddressLine: "12 Nguyen Trai, District 1",
		RecipientName:   "Tran Van A",
		RecipientPhone:  "0901234567",
	}
	items := []models.OrderItem{
		{ProductID: uuidcodec.New(), Quantity: 1, Price: decimal.NewFromInt(10000)},
		{ProductID: uuidcodec.New(), Quantity: 2, Price: decimal.NewFromInt(5000)},
		{ProductID: uuidcodec.New(), Quantity: 1, Price: decimal.NewFromInt(20000)},
	}
	return order, address, items
}

func TestCreateOrderTxCommitsAllRows(t *testing.T) {
	s, mock := newMockStore(t)
	order, address, items := sampleOrderInput()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), order.UserID, sqlmock.AnyArg(),
			decimal.NewFromInt(40000), models.OrderStatusPending,
			models.PaymentMethodCash, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for range items {
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := s.CreateOrderTx(context.Background(), order, address, items)
	require.NoError(t, err)

	// total computed once from the submitted lines: 10000 + 2*5000 + 20000
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(40000)), "got %s", order.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.False(t, order.ID.IsZero())
	assert.Equal(t, address.ID, order.OrderAddressID)
	assert.Len(t, order.Items, 3)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.False(t, item.ID.IsZero())
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTxRollsBackOnItemFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, address, items := sampleOrderInput()

	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.CreateOrderTx(context.Background(), order, address, items)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOrderCreation)

	// no commit expectation: the failed unit of work must roll back fully
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTxRollsBackOnAddressFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, address, items := sampleOrderInput()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").
		WillReturnError(errors.New("numeric overflow"))
	mock.ExpectRollback()

	err := s.CreateOrderTx(context.Background(), order, address, items)
	assert.ErrorIs(t, err, ErrOrderCreation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTxWrapsCommitFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, address, items := sampleOrderInput()
	items = items[:1]

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("deadline exceeded"))

	err := s.CreateOrderTx(context.Background(), order, address, items)
	assert.ErrorIs(t, err, ErrOrderCreation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuidcodec.New()

	mock.ExpectQuery("SELECT \\* FROM orders WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetOrderByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuidcodec.New()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(models.OrderStatusPaid, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateOrderStatus(context.Background(), id, models.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}
