package service

import (
	"context"
	"fmt"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// CoordinatorService implements ports.OrderCoordinator. It owns the Order
// state machine and keeps the status / payment-status pair consistent:
// both axes are written in a single conditional statement so "paid" and
// "confirmed" appear together or not at all.
type CoordinatorService struct {
	orderRepo ports.OrderRepository
	log       zerolog.Logger
}

// NewCoordinatorService creates a new CoordinatorService.
func NewCoordinatorService(orderRepo ports.OrderRepository, log zerolog.Logger) *CoordinatorService {
	return &CoordinatorService{orderRepo: orderRepo, log: log}
}

// OnPaymentCompleted marks the order paid, confirming it when still pending.
// Repeated calls are no-ops.
func (s *CoordinatorService) OnPaymentCompleted(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if order.IsPaid() {
		return nil
	}

	if order.Status == domain.OrderStatusPending {
		applied, err := s.orderRepo.UpdateStatuses(ctx, tx, order.ID,
			domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderPaymentPaid)
		if err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("confirm order: %w", err))
		}
		if !applied {
			// Another writer confirmed the order first.
			return nil
		}
		order.Status = domain.OrderStatusConfirmed
	} else {
		// Fulfilment has already moved on (e.g. a retried payment settled
		// after manual confirmation); only the payment axis changes.
		if err := s.orderRepo.UpdatePaymentStatus(ctx, tx, order.ID, domain.OrderPaymentPaid); err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("mark order paid: %w", err))
		}
	}
	order.PaymentStatus = domain.OrderPaymentPaid

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.Number).
		Msg("order marked paid")

	return nil
}

// OnPaymentFailed marks the payment axis failed. Fulfilment status stays
// unchanged so the customer can retry with a fresh payment attempt.
func (s *CoordinatorService) OnPaymentFailed(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if err := s.orderRepo.UpdatePaymentStatus(ctx, tx, order.ID, domain.OrderPaymentFailed); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("mark order payment failed: %w", err))
	}
	order.PaymentStatus = domain.OrderPaymentFailed

	s.log.Warn().
		Str("order_id", order.ID.String()).
		Str("order_number", order.Number).
		Msg("order payment failed")

	return nil
}

// OnRefunded moves the order to refunded on both axes.
func (s *CoordinatorService) OnRefunded(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if !order.CanRefund() {
		return apperror.ErrRefundNotAllowed()
	}

	applied, err := s.orderRepo.UpdateStatuses(ctx, tx, order.ID,
		order.Status, domain.OrderStatusRefunded, domain.OrderPaymentRefunded)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("refund order: %w", err))
	}
	if !applied {
		// Concurrent writer moved the order; re-reads will observe the
		// settled state.
		return nil
	}
	order.Status = domain.OrderStatusRefunded
	order.PaymentStatus = domain.OrderPaymentRefunded

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.Number).
		Msg("order refunded")

	return nil
}

// Cancel moves a pending or confirmed order to cancelled.
func (s *CoordinatorService) Cancel(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	if !order.CanCancel() {
		return apperror.ErrCancelNotAllowed()
	}

	applied, err := s.orderRepo.UpdateStatuses(ctx, tx, order.ID,
		order.Status, domain.OrderStatusCancelled, order.PaymentStatus)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("cancel order: %w", err))
	}
	if !applied {
		return apperror.ErrCancelNotAllowed()
	}
	order.Status = domain.OrderStatusCancelled

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.Number).
		Msg("order cancelled")

	return nil
}
