package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/internal/core/ports/mocks"
	"order-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type settlementTestDeps struct {
	svc         *Settlement
	orderRepo   *mocks.MockOrderRepository
	paymentRepo *mocks.MockPaymentRepository
	idempRepo   *mocks.MockIdempotencyRepository
	seenCache   *mocks.MockEventSeenCache
	ledger      *mocks.MockPaymentLedger
	coordinator *mocks.MockOrderCoordinator
	gateway     *mocks.MockGatewayClient
	verifier    *mocks.MockSignatureVerifier
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupSettlement(t *testing.T) *settlementTestDeps {
	ctrl := gomock.NewController(t)
	d := &settlementTestDeps{
		orderRepo:   mocks.NewMockOrderRepository(ctrl),
		paymentRepo: mocks.NewMockPaymentRepository(ctrl),
		idempRepo:   mocks.NewMockIdempotencyRepository(ctrl),
		seenCache:   mocks.NewMockEventSeenCache(ctrl),
		ledger:      mocks.NewMockPaymentLedger(ctrl),
		coordinator: mocks.NewMockOrderCoordinator(ctrl),
		gateway:     mocks.NewMockGatewayClient(ctrl),
		verifier:    mocks.NewMockSignatureVerifier(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewSettlement(
		d.orderRepo, d.paymentRepo, d.idempRepo, d.seenCache,
		d.ledger, d.coordinator, d.gateway, d.verifier, d.transactor,
		"key_secret", "webhook_secret", "INR", zerolog.Nop(),
	)
	return d
}

// ==================== Initiate Tests ====================

func TestSettlement_Initiate_GatewayMethod(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order := testOrder(customerID, 250000)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.paymentRepo.EXPECT().GetActiveByOrderID(ctx, order.ID).Return(nil, nil)
	d.gateway.EXPECT().CreateIntent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.CreateIntentRequest) (*ports.GatewayIntent, error) {
			assert.Equal(t, int64(250000), req.Amount)
			assert.Equal(t, "INR", req.Currency)
			assert.NotEmpty(t, req.ReceiptRef)
			return &ports.GatewayIntent{IntentID: "order_G8VaL2Z98VJz2E", Amount: req.Amount, Currency: req.Currency}, nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().LockForUpdate(ctx, tx, order.ID).Return(nil)
	d.ledger.EXPECT().
		Create(ctx, tx, order, int64(250000), domain.MethodUPI, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, o *domain.Order, amount int64, method domain.PaymentMethod, reference string, gatewayOrderID *string) (*domain.Payment, error) {
			require.NotNil(t, gatewayOrderID)
			assert.Equal(t, "order_G8VaL2Z98VJz2E", *gatewayOrderID)
			return &domain.Payment{
				ID:             uuid.New(),
				OrderID:        o.ID,
				CustomerID:     o.CustomerID,
				Reference:      reference,
				GatewayOrderID: gatewayOrderID,
				Amount:         amount,
				Currency:       "INR",
				Method:         method,
				Status:         domain.PaymentStatusPending,
			}, nil
		})

	view, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OrderID:    order.ID,
		CustomerID: customerID,
		Method:     domain.MethodUPI,
	})
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "pending", view.Status)
	require.NotNil(t, view.GatewayOrderID)
	assert.Equal(t, "order_G8VaL2Z98VJz2E", *view.GatewayOrderID)
}

func TestSettlement_Initiate_CashOnDeliverySettlesSynchronously(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order := testOrder(customerID, 90000)
	payment := &domain.Payment{
		ID:         uuid.New(),
		OrderID:    order.ID,
		CustomerID: customerID,
		Amount:     90000,
		Method:     domain.MethodCashOnDelivery,
		Status:     domain.PaymentStatusPending,
	}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.paymentRepo.EXPECT().GetActiveByOrderID(ctx, order.ID).Return(nil, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().LockForUpdate(ctx, tx, order.ID).Return(nil)
	d.ledger.EXPECT().
		Create(ctx, tx, order, int64(90000), domain.MethodCashOnDelivery, gomock.Any(), gomock.Nil()).
		Return(payment, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusCompleted, gomock.Any(), "system").
		DoAndReturn(func(_ context.Context, _ any, p *domain.Payment, to domain.PaymentStatus, _, _ string) (bool, error) {
			p.Status = to
			return true, nil
		})
	d.coordinator.EXPECT().OnPaymentCompleted(ctx, tx, order).Return(nil)

	view, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OrderID:    order.ID,
		CustomerID: customerID,
		Method:     domain.MethodCashOnDelivery,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", view.Status)
	assert.Nil(t, view.GatewayOrderID)
}

func TestSettlement_Initiate_AccessDenied(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	order := testOrder(uuid.New(), 250000)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OrderID:    order.ID,
		CustomerID: uuid.New(),
		Method:     domain.MethodCard,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SIG_003", appErr.Code)
}

func TestSettlement_Initiate_AlreadyPaid(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	order := testOrder(customerID, 250000)
	order.PaymentStatus = domain.OrderPaymentPaid

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OrderID:    order.ID,
		CustomerID: customerID,
		Method:     domain.MethodCard,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_004", appErr.Code)
}

// A gateway outage during intent creation must not leave a payment row.
func TestSettlement_Initiate_GatewayDownLeavesNoPayment(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	order := testOrder(customerID, 250000)

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.paymentRepo.EXPECT().GetActiveByOrderID(ctx, order.ID).Return(nil, nil)
	d.gateway.EXPECT().CreateIntent(ctx, gomock.Any()).
		Return(nil, apperror.ErrGatewayUnavailable(errors.New("connection refused")))

	_, err := d.svc.Initiate(ctx, ports.InitiateRequest{
		OrderID:    order.ID,
		CustomerID: customerID,
		Method:     domain.MethodCard,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeGatewayUnavailable, appErr.Code)
}

// ==================== VerifyClientCallback Tests ====================

func verifyFixture(customerID uuid.UUID) (*domain.Order, *domain.Payment, ports.VerifyRequest) {
	order := testOrder(customerID, 250000)
	gwOrderID := "order_G8VaL2Z98VJz2E"
	payment := &domain.Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		CustomerID:     customerID,
		GatewayOrderID: &gwOrderID,
		Amount:         250000,
		Currency:       "INR",
		Method:         domain.MethodUPI,
		Status:         domain.PaymentStatusPending,
	}
	req := ports.VerifyRequest{
		PaymentID:        payment.ID,
		CustomerID:       customerID,
		GatewayOrderID:   gwOrderID,
		GatewayPaymentID: "pay_29QQoUBi66xm2f",
		Signature:        "sig",
	}
	return order, payment, req
}

func TestSettlement_VerifyClientCallback_Captured(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment, req := verifyFixture(customerID)

	d.paymentRepo.EXPECT().GetByID(ctx, req.PaymentID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.verifier.EXPECT().
		Verify("key_secret", CallbackPayload(req.GatewayOrderID, req.GatewayPaymentID), "sig").
		Return(true)
	d.gateway.EXPECT().FetchPayment(ctx, req.GatewayPaymentID).Return(&ports.GatewayPayment{
		PaymentID: req.GatewayPaymentID,
		IntentID:  req.GatewayOrderID,
		Amount:    250000,
		Status:    "captured",
	}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.paymentRepo.EXPECT().SetGatewayPaymentID(ctx, tx, payment.ID, req.GatewayPaymentID).Return(nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusCompleted, gomock.Any(), "customer").
		Return(true, nil)
	d.coordinator.EXPECT().OnPaymentCompleted(ctx, tx, order).Return(nil)

	result, err := d.svc.VerifyClientCallback(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, payment, result.Payment)
	assert.Equal(t, order, result.Order)
}

func TestSettlement_VerifyClientCallback_BadSignatureFailsPayment(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment, req := verifyFixture(customerID)
	req.Signature = "forged"

	d.paymentRepo.EXPECT().GetByID(ctx, req.PaymentID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.verifier.EXPECT().Verify("key_secret", gomock.Any(), "forged").Return(false)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusFailed, gomock.Any(), "customer").
		Return(true, nil)
	d.coordinator.EXPECT().OnPaymentFailed(ctx, tx, order).Return(nil)

	_, err := d.svc.VerifyClientCallback(ctx, req)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SIG_001", appErr.Code)
}

// A forged callback against a payment that already settled cannot move it
// to failed. The caller still sees the signature error, not the
// state-machine rejection.
func TestSettlement_VerifyClientCallback_BadSignatureAfterSettlement(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment, req := verifyFixture(customerID)
	payment.Status = domain.PaymentStatusCompleted
	req.Signature = "deadbeef"

	d.paymentRepo.EXPECT().GetByID(ctx, req.PaymentID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.verifier.EXPECT().Verify("key_secret", gomock.Any(), "deadbeef").Return(false)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusFailed, gomock.Any(), "customer").
		Return(false, apperror.ErrInvalidTransition("completed", "failed"))

	_, err := d.svc.VerifyClientCallback(ctx, req)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SIG_001", appErr.Code)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
}

// Valid signature but the gateway does not report the money as captured.
func TestSettlement_VerifyClientCallback_NotCaptured(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	order, payment, req := verifyFixture(customerID)

	d.paymentRepo.EXPECT().GetByID(ctx, req.PaymentID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.verifier.EXPECT().Verify("key_secret", gomock.Any(), "sig").Return(true)
	d.gateway.EXPECT().FetchPayment(ctx, req.GatewayPaymentID).Return(&ports.GatewayPayment{
		PaymentID: req.GatewayPaymentID,
		IntentID:  req.GatewayOrderID,
		Amount:    250000,
		Status:    "created",
	}, nil)

	_, err := d.svc.VerifyClientCallback(ctx, req)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "GW_004", appErr.Code)
}

// ==================== HandleWebhook Tests ====================

func capturedEventBody(eventID, gatewayPaymentID, gatewayOrderID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": %q,
					"order_id": %q,
					"amount": %d,
					"currency": "INR",
					"status": "captured"
				}
			}
		}
	}`, eventID, gatewayPaymentID, gatewayOrderID, amount))
}

func TestSettlement_HandleWebhook_InvalidSignature(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	body := capturedEventBody("evt_1", "pay_1", "order_1", 100)
	d.verifier.EXPECT().Verify("webhook_secret", body, "bad").Return(false)

	err := d.svc.HandleWebhook(context.Background(), body, "bad", "evt_1")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SIG_001", appErr.Code)
}

func TestSettlement_HandleWebhook_CapturedApplied(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment, _ := verifyFixture(customerID)
	gwPaymentID := "pay_29QQoUBi66xm2f"
	body := capturedEventBody("evt_1", gwPaymentID, *payment.GatewayOrderID, payment.Amount)

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_1").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_1").Return(nil, nil)
	d.paymentRepo.EXPECT().GetByGatewayPaymentID(ctx, gwPaymentID).Return(payment, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusCompleted, gomock.Any(), "gateway").
		Return(true, nil)
	d.orderRepo.EXPECT().GetByID(ctx, payment.OrderID).Return(order, nil)
	d.coordinator.EXPECT().OnPaymentCompleted(ctx, tx, order).Return(nil)
	d.idempRepo.EXPECT().Insert(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, event *domain.WebhookEvent) (bool, error) {
			assert.Equal(t, "evt_1", event.EventID)
			assert.Equal(t, domain.EventPaymentCaptured, event.EventType)
			assert.Equal(t, domain.EventOutcomeApplied, event.Outcome)
			return true, nil
		})
	d.seenCache.EXPECT().MarkSeen(ctx, "evt_1", seenCacheTTL).Return(nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_1")
	require.NoError(t, err)
}

func TestSettlement_HandleWebhook_DuplicateCacheHit(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	body := capturedEventBody("evt_1", "pay_1", "order_1", 100)

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_1").Return(true, nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_1")
	require.NoError(t, err)
}

func TestSettlement_HandleWebhook_DuplicateInDatabase(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	body := capturedEventBody("evt_1", "pay_1", "order_1", 100)

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_1").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_1").Return(&domain.WebhookEvent{
		EventID:   "evt_1",
		EventType: domain.EventPaymentCaptured,
		Outcome:   domain.EventOutcomeApplied,
	}, nil)
	d.seenCache.EXPECT().MarkSeen(ctx, "evt_1", seenCacheTTL).Return(nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_1")
	require.NoError(t, err)
}

func TestSettlement_HandleWebhook_UnknownEventTypeRecordedAsIgnored(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	body := []byte(`{"id": "evt_9", "event": "payment.authorized", "payload": {}}`)

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_9").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_9").Return(nil, nil)
	d.idempRepo.EXPECT().Insert(ctx, tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, event *domain.WebhookEvent) (bool, error) {
			assert.Equal(t, domain.EventOutcomeIgnored, event.Outcome)
			return true, nil
		})
	d.seenCache.EXPECT().MarkSeen(ctx, "evt_9", seenCacheTTL).Return(nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_9")
	require.NoError(t, err)
}

// Two deliveries race: the loser's insert returns false and its handler
// effects roll back with the transaction.
func TestSettlement_HandleWebhook_LostInsertRace(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment, _ := verifyFixture(customerID)
	gwPaymentID := "pay_29QQoUBi66xm2f"
	body := capturedEventBody("evt_1", gwPaymentID, *payment.GatewayOrderID, payment.Amount)

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_1").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_1").Return(nil, nil)
	d.paymentRepo.EXPECT().GetByGatewayPaymentID(ctx, gwPaymentID).Return(payment, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, payment, domain.PaymentStatusCompleted, gomock.Any(), "gateway").
		Return(true, nil)
	d.orderRepo.EXPECT().GetByID(ctx, payment.OrderID).Return(order, nil)
	d.coordinator.EXPECT().OnPaymentCompleted(ctx, tx, order).Return(nil)
	d.idempRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(false, nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_1")
	require.NoError(t, err)
}

func TestSettlement_HandleWebhook_RefundProcessed(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order := testOrder(customerID, 250000)
	order.Status = domain.OrderStatusDelivered
	order.PaymentStatus = domain.OrderPaymentPaid
	gwPaymentID := "pay_29QQoUBi66xm2f"
	payment := &domain.Payment{
		ID:               uuid.New(),
		OrderID:          order.ID,
		CustomerID:       customerID,
		GatewayPaymentID: &gwPaymentID,
		Amount:           250000,
		Status:           domain.PaymentStatusCompleted,
		Refund:           &domain.Refund{Amount: 250000, Status: domain.RefundStatusPending},
	}
	body := []byte(fmt.Sprintf(`{
		"id": "evt_r1",
		"event": "refund.processed",
		"payload": {
			"refund": {
				"entity": {"id": "rfnd_1", "payment_id": %q, "amount": 250000, "status": "processed"}
			}
		}
	}`, gwPaymentID))

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_r1").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_r1").Return(nil, nil)
	d.paymentRepo.EXPECT().GetByGatewayPaymentID(ctx, gwPaymentID).Return(payment, nil)
	d.ledger.EXPECT().FinalizeRefund(ctx, tx, payment, "rfnd_1", "gateway").Return(true, nil)
	d.orderRepo.EXPECT().GetByID(ctx, payment.OrderID).Return(order, nil)
	d.coordinator.EXPECT().OnRefunded(ctx, tx, order).Return(nil)
	d.idempRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.seenCache.EXPECT().MarkSeen(ctx, "evt_r1", seenCacheTTL).Return(nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_r1")
	require.NoError(t, err)
}

// The event's amount must agree with the refund record before the refund
// finalizes. A disagreement rolls back and surfaces as a mismatch.
func TestSettlement_HandleWebhook_RefundAmountDisagrees(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	gwPaymentID := "pay_29QQoUBi66xm2f"
	payment := &domain.Payment{
		ID:               uuid.New(),
		OrderID:          uuid.New(),
		CustomerID:       customerID,
		GatewayPaymentID: &gwPaymentID,
		Amount:           250000,
		Status:           domain.PaymentStatusCompleted,
		Refund:           &domain.Refund{Amount: 250000, Status: domain.RefundStatusPending},
	}
	body := []byte(fmt.Sprintf(`{
		"id": "evt_r2",
		"event": "refund.processed",
		"payload": {
			"refund": {
				"entity": {"id": "rfnd_1", "payment_id": %q, "amount": 100000, "status": "processed"}
			}
		}
	}`, gwPaymentID))

	d.verifier.EXPECT().Verify("webhook_secret", body, "sig").Return(true)
	d.seenCache.EXPECT().Seen(ctx, "evt_r2").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.idempRepo.EXPECT().Get(ctx, "evt_r2").Return(nil, nil)
	d.paymentRepo.EXPECT().GetByGatewayPaymentID(ctx, gwPaymentID).Return(payment, nil)

	err := d.svc.HandleWebhook(ctx, body, "sig", "evt_r2")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_003", appErr.Code)
	require.NotNil(t, payment.Refund)
	assert.Equal(t, domain.RefundStatusPending, payment.Refund.Status)
}

// ==================== RequestRefund Tests ====================

func refundFixture(customerID uuid.UUID) (*domain.Order, *domain.Payment) {
	order := testOrder(customerID, 250000)
	order.Status = domain.OrderStatusDelivered
	order.PaymentStatus = domain.OrderPaymentPaid
	gwPaymentID := "pay_29QQoUBi66xm2f"
	payment := &domain.Payment{
		ID:               uuid.New(),
		OrderID:          order.ID,
		CustomerID:       customerID,
		GatewayPaymentID: &gwPaymentID,
		Amount:           250000,
		Method:           domain.MethodUPI,
		Status:           domain.PaymentStatusCompleted,
	}
	return order, payment
}

func TestSettlement_RequestRefund_GatewayAccepts(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment := refundFixture(customerID)

	d.paymentRepo.EXPECT().GetByID(ctx, payment.ID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().
		AttachRefund(ctx, tx, payment, int64(250000), "damaged item", "customer").
		DoAndReturn(func(_ context.Context, _ any, p *domain.Payment, amount int64, reason, _ string) error {
			p.Refund = &domain.Refund{Amount: amount, Reason: reason, Status: domain.RefundStatusPending}
			return nil
		})
	d.gateway.EXPECT().
		CreateRefund(ctx, *payment.GatewayPaymentID, int64(250000), gomock.Any()).
		Return(&ports.GatewayRefund{RefundID: "rfnd_1", Amount: 250000, Status: "pending"}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().RecordGatewayRefund(ctx, tx, payment, "rfnd_1").Return(nil)

	result, err := d.svc.RequestRefund(ctx, ports.RefundRequest{
		PaymentID:  payment.ID,
		CustomerID: customerID,
		Reason:     "damaged item",
		Actor:      "customer",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Refund)
	assert.Equal(t, domain.RefundStatusPending, result.Refund.Status)
	// The payment stays completed until the refund.processed event lands.
	assert.Equal(t, domain.PaymentStatusCompleted, result.Status)
}

// A definitive 4xx from the gateway reverts the pending sub-record.
func TestSettlement_RequestRefund_GatewayRejects(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment := refundFixture(customerID)

	d.paymentRepo.EXPECT().GetByID(ctx, payment.ID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().
		AttachRefund(ctx, tx, payment, int64(250000), "x", "customer").
		Return(nil)
	d.gateway.EXPECT().
		CreateRefund(ctx, *payment.GatewayPaymentID, int64(250000), gomock.Any()).
		Return(nil, apperror.ErrRefundRejected(errors.New("payment not captured")))
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().ClearRefund(ctx, tx, payment, gomock.Any()).Return(nil)

	_, err := d.svc.RequestRefund(ctx, ports.RefundRequest{
		PaymentID:  payment.ID,
		CustomerID: customerID,
		Reason:     "x",
		Actor:      "customer",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRefundRejected, appErr.Code)
}

// A timeout leaves the pending sub-record in place for reconciliation.
func TestSettlement_RequestRefund_GatewayUnavailableLeavesPending(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order, payment := refundFixture(customerID)

	d.paymentRepo.EXPECT().GetByID(ctx, payment.ID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().
		AttachRefund(ctx, tx, payment, int64(250000), "x", "customer").
		DoAndReturn(func(_ context.Context, _ any, p *domain.Payment, amount int64, reason, _ string) error {
			p.Refund = &domain.Refund{Amount: amount, Reason: reason, Status: domain.RefundStatusPending}
			return nil
		})
	d.gateway.EXPECT().
		CreateRefund(ctx, *payment.GatewayPaymentID, int64(250000), gomock.Any()).
		Return(nil, apperror.ErrGatewayUnavailable(errors.New("timeout")))

	_, err := d.svc.RequestRefund(ctx, ports.RefundRequest{
		PaymentID:  payment.ID,
		CustomerID: customerID,
		Reason:     "x",
		Actor:      "customer",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeGatewayUnavailable, appErr.Code)
	// Sub-record stays pending for the webhook or reconciliation.
	require.NotNil(t, payment.Refund)
	assert.Equal(t, domain.RefundStatusPending, payment.Refund.Status)
}

func TestSettlement_RequestRefund_OrderNotRefundable(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	customerID := uuid.New()
	order, payment := refundFixture(customerID)
	order.Status = domain.OrderStatusShipped

	d.paymentRepo.EXPECT().GetByID(ctx, payment.ID).Return(payment, nil)
	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := d.svc.RequestRefund(ctx, ports.RefundRequest{
		PaymentID:  payment.ID,
		CustomerID: customerID,
		Reason:     "x",
		Actor:      "customer",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_010", appErr.Code)
}

// ==================== CancelOrder Tests ====================

func TestSettlement_CancelOrder_CancelsPendingPayment(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order := testOrder(customerID, 250000)
	pendingPayment := &domain.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  domain.PaymentStatusPending,
	}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coordinator.EXPECT().Cancel(ctx, tx, order).Return(nil)
	d.paymentRepo.EXPECT().GetActiveByOrderID(ctx, order.ID).Return(pendingPayment, nil)
	d.ledger.EXPECT().
		Transition(ctx, tx, pendingPayment, domain.PaymentStatusCancelled, gomock.Any(), "customer").
		Return(true, nil)

	result, err := d.svc.CancelOrder(ctx, order.ID, customerID)
	require.NoError(t, err)
	assert.Equal(t, order, result)
}

// A payment mid-flight at the gateway is left for its webhook to settle.
func TestSettlement_CancelOrder_LeavesProcessingPayment(t *testing.T) {
	d := setupSettlement(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	customerID := uuid.New()
	order := testOrder(customerID, 250000)
	processing := &domain.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		Status:  domain.PaymentStatusProcessing,
	}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.coordinator.EXPECT().Cancel(ctx, tx, order).Return(nil)
	d.paymentRepo.EXPECT().GetActiveByOrderID(ctx, order.ID).Return(processing, nil)

	_, err := d.svc.CancelOrder(ctx, order.ID, customerID)
	require.NoError(t, err)
}
