package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/uuidcodec"
)

const testGatewayURL = "https://payment-gateway.com/pay"

func newMockOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock"))
	return NewOrderService(st, nil, testGatewayURL), mock
}

func validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID: uuidcodec.New().String(),
		Address: OrderAddressRequest{
			FullAddressLine: "12 Nguyen Trai, District 1",
			RecipientName:   "Tran Van A",
			RecipientPhone:  "0901234567",
		},
		Items: []OrderItemRequest{
			{
				ProductID:   uuidcodec.New().String(),
				Quantity:    2,
				Price:       decimal.NewFromInt(150000),
				SizeValue:   "M",
				ProductName: "Basic Tee",
			},
		},
		PaymentMethod: models.PaymentMethodCash,
	}
}

func expectOrderTx(mock sqlmock.Sqlmock, itemCount int) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	for i := 0; i < itemCount; i++ {
		mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
}

func TestCreateOrderOfflineMethodHasNoPaymentURL(t *testing.T) {
	svc, mock := newMockOrderService(t)
	expectOrderTx(mock, 1)

	resp, err := svc.CreateOrder(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Nil(t, resp.PaymentURL)

	_, err = uuidcodec.Parse(resp.OrderID)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderOnlineMethodGetsPaymentURL(t *testing.T) {
	svc, mock := newMockOrderService(t)
	expectOrderTx(mock, 1)

	req := validRequest()
	req.PaymentMethod = models.PaymentMethodMomo

	resp, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.PaymentURL)
	assert.Contains(t, *resp.PaymentURL, testGatewayURL)
	assert.Contains(t, *resp.PaymentURL, "order_id="+resp.OrderID)
	assert.Contains(t, *resp.PaymentURL, "amount=300000")
}

func TestCreateOrderBankTransferHasNoRedirect(t *testing.T) {
	svc, mock := newMockOrderService(t)
	expectOrderTx(mock, 1)

	req := validRequest()
	req.PaymentMethod = models.PaymentMethodBank

	resp, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.PaymentURL)
}

func TestCreateOrderRejectsMalformedUserID(t *testing.T) {
	svc := NewOrderService(nil, nil, testGatewayURL)

	req := validRequest()
	req.UserID = "not-a-uuid"

	_, err := svc.CreateOrder(context.Background(), req)
	assert.ErrorIs(t, err, uuidcodec.ErrInvalidFormat)
}

func TestCreateOrderValidationFailsBeforeTransaction(t *testing.T) {
	// nil store: any storage access would panic, so these must fail first
	svc := NewOrderService(nil, nil, testGatewayURL)

	t.Run("empty items", func(t *testing.T) {
		req := validRequest()
		req.Items = nil
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := validRequest()
		req.Items[0].Quantity = 0
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("negative price", func(t *testing.T) {
		req := validRequest()
		req.Items[0].Price = decimal.NewFromInt(-1)
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		req := validRequest()
		req.PaymentMethod = "paypal"
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing recipient", func(t *testing.T) {
		req := validRequest()
		req.Address.RecipientName = ""
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("malformed product id", func(t *testing.T) {
		req := validRequest()
		req.Items[0].ProductID = "123"
		_, err := svc.CreateOrder(context.Background(), req)
		assert.ErrorIs(t, err, uuidcodec.ErrInvalidFormat)
	})
}

func TestCreateOrderSurfacesStorageFailure(t *testing.T) {
	svc, mock := newMockOrderService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO order_addresses").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), validRequest())
	assert.ErrorIs(t, err, store.ErrOrderCreation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
