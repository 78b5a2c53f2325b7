package service

import (
	"context"
	"testing"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports/mocks"
	"order-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type coordinatorTestDeps struct {
	svc       *CoordinatorService
	orderRepo *mocks.MockOrderRepository
	ctrl      *gomock.Controller
}

func setupCoordinator(t *testing.T) *coordinatorTestDeps {
	ctrl := gomock.NewController(t)
	d := &coordinatorTestDeps{
		orderRepo: mocks.NewMockOrderRepository(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewCoordinatorService(d.orderRepo, zerolog.Nop())
	return d
}

func TestCoordinatorService_OnPaymentCompleted_ConfirmsPendingOrder(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	order := testOrder(uuid.New(), 250000)

	d.orderRepo.EXPECT().
		UpdateStatuses(ctx, tx, order.ID, domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderPaymentPaid).
		Return(true, nil)

	err := d.svc.OnPaymentCompleted(ctx, tx, order)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, domain.OrderPaymentPaid, order.PaymentStatus)
}

func TestCoordinatorService_OnPaymentCompleted_AlreadyPaidIsNoop(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	order := testOrder(uuid.New(), 250000)
	order.Status = domain.OrderStatusConfirmed
	order.PaymentStatus = domain.OrderPaymentPaid

	err := d.svc.OnPaymentCompleted(context.Background(), &mockTx{}, order)
	require.NoError(t, err)
}

func TestCoordinatorService_OnPaymentFailed_LeavesFulfilmentAlone(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	order := testOrder(uuid.New(), 250000)

	d.orderRepo.EXPECT().
		UpdatePaymentStatus(ctx, tx, order.ID, domain.OrderPaymentFailed).
		Return(nil)

	err := d.svc.OnPaymentFailed(ctx, tx, order)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.OrderPaymentFailed, order.PaymentStatus)
}

func TestCoordinatorService_OnRefunded_Success(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	order := testOrder(uuid.New(), 250000)
	order.Status = domain.OrderStatusDelivered
	order.PaymentStatus = domain.OrderPaymentPaid

	d.orderRepo.EXPECT().
		UpdateStatuses(ctx, tx, order.ID, domain.OrderStatusDelivered, domain.OrderStatusRefunded, domain.OrderPaymentRefunded).
		Return(true, nil)

	err := d.svc.OnRefunded(ctx, tx, order)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, order.Status)
}

func TestCoordinatorService_OnRefunded_NotRefundable(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	order := testOrder(uuid.New(), 250000)
	order.Status = domain.OrderStatusShipped

	err := d.svc.OnRefunded(context.Background(), &mockTx{}, order)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_010", appErr.Code)
}

func TestCoordinatorService_Cancel_Success(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	order := testOrder(uuid.New(), 250000)

	d.orderRepo.EXPECT().
		UpdateStatuses(ctx, tx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, order.PaymentStatus).
		Return(true, nil)

	err := d.svc.Cancel(ctx, tx, order)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestCoordinatorService_Cancel_Shipped(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	order := testOrder(uuid.New(), 250000)
	order.Status = domain.OrderStatusShipped

	err := d.svc.Cancel(context.Background(), &mockTx{}, order)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_011", appErr.Code)
}

func TestCoordinatorService_Cancel_LostRace(t *testing.T) {
	d := setupCoordinator(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	order := testOrder(uuid.New(), 250000)

	d.orderRepo.EXPECT().
		UpdateStatuses(ctx, tx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, order.PaymentStatus).
		Return(false, nil)

	err := d.svc.Cancel(ctx, tx, order)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "PAY_011", appErr.Code)
}
