package service

import (
	"context"
	"fmt"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// History implements ports.HistoryService, serving the customer-facing
// read side of the payment records.
type History struct {
	paymentRepo  ports.PaymentRepository
	timelineRepo ports.TimelineRepository
	log          zerolog.Logger
}

// NewHistory creates a new history service.
func NewHistory(paymentRepo ports.PaymentRepository, timelineRepo ports.TimelineRepository, log zerolog.Logger) *History {
	return &History{
		paymentRepo:  paymentRepo,
		timelineRepo: timelineRepo,
		log:          log,
	}
}

// GetPayment returns one payment with its full timeline. Customers only
// see their own payments.
func (s *History) GetPayment(ctx context.Context, paymentID, customerID uuid.UUID) (*ports.PaymentDetail, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("Payment")
	}
	if payment.CustomerID != customerID {
		return nil, apperror.ErrAccessDenied()
	}

	timeline, err := s.timelineRepo.ListByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list timeline: %w", err))
	}

	return &ports.PaymentDetail{
		Payment:  *payment,
		Timeline: timeline,
	}, nil
}

// ListPayments returns a page of the customer's payments plus the total
// count for pagination.
func (s *History) ListPayments(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list payments: %w", err))
	}
	return payments, total, nil
}
