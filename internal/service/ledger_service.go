package service

import (
	"context"
	"fmt"
	"time"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerService implements ports.PaymentLedger. It is the single owner of
// the Payment state machine; every status change goes through a CAS write
// and appends exactly one timeline entry.
type LedgerService struct {
	paymentRepo  ports.PaymentRepository
	timelineRepo ports.TimelineRepository
	gateway      string
	currency     string
	log          zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	paymentRepo ports.PaymentRepository,
	timelineRepo ports.TimelineRepository,
	gateway string,
	currency string,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		paymentRepo:  paymentRepo,
		timelineRepo: timelineRepo,
		gateway:      gateway,
		currency:     currency,
		log:          log,
	}
}

// Create records a new pending payment for the order. The reference comes
// from the caller so it can be registered with the gateway before the row
// exists; gatewayOrderID is nil for non-gateway methods.
func (s *LedgerService) Create(ctx context.Context, tx pgx.Tx, order *domain.Order, amount int64, method domain.PaymentMethod, reference string, gatewayOrderID *string) (*domain.Payment, error) {
	if amount <= 0 {
		return nil, apperror.ErrValidation("amount must be positive")
	}
	if amount != order.TotalAmount {
		return nil, apperror.ErrAmountMismatch()
	}
	if !method.Valid() {
		return nil, apperror.ErrValidation(fmt.Sprintf("unknown payment method %q", method))
	}

	active, err := s.paymentRepo.GetActiveByOrderID(ctx, order.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check active payment: %w", err))
	}
	if active != nil {
		return nil, apperror.ErrPaymentInFlight()
	}

	if reference == "" {
		reference = domain.NewPaymentReference()
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Reference:      reference,
		GatewayOrderID: gatewayOrderID,
		Amount:         amount,
		Currency:       s.currency,
		Method:         method,
		Status:         domain.PaymentStatusPending,
		Gateway:        s.gateway,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create payment: %w", err))
	}
	if err := s.appendTimeline(ctx, tx, payment.ID, domain.PaymentStatusPending, "payment created", "system"); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("order_id", order.ID.String()).
		Int64("amount", amount).
		Str("method", string(method)).
		Msg("payment created")

	return payment, nil
}

// Transition applies a CAS status move.
//
// Three outcomes:
//   - (true, nil): the move applied and one timeline entry was appended.
//   - (false, nil): the payment already carries the target status, or a
//     concurrent writer advanced it first. Nothing was written.
//   - InvalidTransition: the move is not in the state machine table.
func (s *LedgerService) Transition(ctx context.Context, tx pgx.Tx, payment *domain.Payment, to domain.PaymentStatus, note, actor string) (bool, error) {
	from := payment.Status
	if from == to {
		return false, nil
	}
	if !domain.CanTransition(from, to) {
		return false, apperror.ErrInvalidTransition(string(from), string(to))
	}

	var failure *domain.FailureReason
	if to == domain.PaymentStatusFailed && note != "" {
		failure = &domain.FailureReason{Code: "payment_failed", Message: note}
	}

	applied, err := s.paymentRepo.UpdateStatusCAS(ctx, tx, payment.ID, from, to, failure)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("transition payment: %w", err))
	}
	if !applied {
		// Another writer settled this payment first. Per the concurrency
		// contract this is success-without-effect, not an error.
		s.log.Debug().
			Str("payment_id", payment.ID.String()).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("payment transition lost CAS race, treating as settled")
		return false, nil
	}

	if err := s.appendTimeline(ctx, tx, payment.ID, to, note, actor); err != nil {
		return false, err
	}

	payment.Status = to
	payment.FailureReason = failure
	payment.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("actor", actor).
		Msg("payment transitioned")

	return true, nil
}

// AttachRefund creates the pending refund sub-record on a completed payment.
func (s *LedgerService) AttachRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, amount int64, reason, actor string) error {
	if payment.Status != domain.PaymentStatusCompleted {
		return apperror.ErrNotCompleted()
	}
	if payment.Refund != nil {
		return apperror.ErrAlreadyRefunded()
	}
	if amount <= 0 {
		return apperror.ErrValidation("refund amount must be positive")
	}
	if amount > payment.Amount {
		return apperror.ErrRefundExceedsAmount()
	}

	refund := &domain.Refund{
		Amount:      amount,
		Reason:      reason,
		Status:      domain.RefundStatusPending,
		ProcessedBy: actor,
		RequestedAt: time.Now().UTC(),
	}

	ok, err := s.paymentRepo.AttachRefund(ctx, tx, payment.ID, refund)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("attach refund: %w", err))
	}
	if !ok {
		// Lost race against another refund request for the same payment.
		return apperror.ErrAlreadyRefunded()
	}

	if err := s.appendTimeline(ctx, tx, payment.ID, payment.Status, fmt.Sprintf("refund of %d requested: %s", amount, reason), actor); err != nil {
		return err
	}

	payment.Refund = refund

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Int64("refund_amount", amount).
		Str("actor", actor).
		Msg("refund attached")

	return nil
}

// RecordGatewayRefund stores the gateway refund id on the pending sub-record.
func (s *LedgerService) RecordGatewayRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, gatewayRefundID string) error {
	if payment.Refund == nil {
		return apperror.ErrValidation("payment has no refund in progress")
	}
	if err := s.paymentRepo.SetRefundGatewayID(ctx, tx, payment.ID, gatewayRefundID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("set gateway refund id: %w", err))
	}
	payment.Refund.GatewayRefundID = &gatewayRefundID
	return nil
}

// ClearRefund removes the pending refund sub-record after a definitive
// gateway rejection, so a corrected request can be made later.
func (s *LedgerService) ClearRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, reason string) error {
	if payment.Refund == nil {
		return nil
	}
	if err := s.paymentRepo.ClearRefund(ctx, tx, payment.ID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("clear refund: %w", err))
	}
	if err := s.appendTimeline(ctx, tx, payment.ID, payment.Status, fmt.Sprintf("refund request withdrawn: %s", reason), "system"); err != nil {
		return err
	}
	payment.Refund = nil

	s.log.Warn().
		Str("payment_id", payment.ID.String()).
		Str("reason", reason).
		Msg("pending refund cleared after gateway rejection")

	return nil
}

// FinalizeRefund settles the refund lane: completed -> refunded, sub-record
// pending -> processed, in one conditional write.
func (s *LedgerService) FinalizeRefund(ctx context.Context, tx pgx.Tx, payment *domain.Payment, gatewayRefundID, actor string) (bool, error) {
	applied, err := s.paymentRepo.FinalizeRefundCAS(ctx, tx, payment.ID)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("finalize refund: %w", err))
	}
	if !applied {
		s.log.Debug().
			Str("payment_id", payment.ID.String()).
			Msg("refund finalization was a no-op, payment not in completed+pending-refund shape")
		return false, nil
	}

	if gatewayRefundID != "" {
		if err := s.paymentRepo.SetRefundGatewayID(ctx, tx, payment.ID, gatewayRefundID); err != nil {
			return false, apperror.ErrDatabaseError(fmt.Errorf("set gateway refund id: %w", err))
		}
	}

	if err := s.appendTimeline(ctx, tx, payment.ID, domain.PaymentStatusRefunded, "refund processed by gateway", actor); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	payment.Status = domain.PaymentStatusRefunded
	if payment.Refund != nil {
		payment.Refund.Status = domain.RefundStatusProcessed
		payment.Refund.ProcessedAt = &now
		if gatewayRefundID != "" {
			payment.Refund.GatewayRefundID = &gatewayRefundID
		}
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("gateway_refund_id", gatewayRefundID).
		Msg("refund finalized")

	return true, nil
}

func (s *LedgerService) appendTimeline(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID, status domain.PaymentStatus, note, actor string) error {
	entry := &domain.TimelineEntry{
		ID:        uuid.New(),
		PaymentID: paymentID,
		Status:    status,
		Note:      note,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.timelineRepo.Append(ctx, tx, entry); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("append timeline: %w", err))
	}
	return nil
}
