package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"
	"order-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// seenCacheTTL bounds how long a webhook event id stays in the Redis fast
// path. The database record is permanent; the cache only short-circuits
// the common burst of immediate redeliveries.
const seenCacheTTL = 24 * time.Hour

// webhookEnvelope is the gateway's wire format for webhook deliveries.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity *webhookPaymentEntity `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity *webhookRefundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

type webhookPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type webhookRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// webhookHandlerFunc applies one event type inside the caller's transaction
// and reports the outcome that gets recorded on the event row.
type webhookHandlerFunc func(ctx context.Context, tx pgx.Tx, env *webhookEnvelope) (domain.EventOutcome, error)

// Settlement is the orchestration facade over gateway, ledger and
// coordinator. It owns cross-entity consistency: every flow that touches
// both a payment and its order runs here, inside one transaction.
type Settlement struct {
	orderRepo   ports.OrderRepository
	paymentRepo ports.PaymentRepository
	idempRepo   ports.IdempotencyRepository
	seenCache   ports.EventSeenCache
	ledger      ports.PaymentLedger
	coordinator ports.OrderCoordinator
	gateway     ports.GatewayClient
	verifier    ports.SignatureVerifier
	transactor  ports.DBTransactor

	keySecret     string
	webhookSecret string
	currency      string

	handlers map[string]webhookHandlerFunc
	log      zerolog.Logger
}

// NewSettlement creates the settlement service and registers the webhook
// dispatch table.
func NewSettlement(
	orderRepo ports.OrderRepository,
	paymentRepo ports.PaymentRepository,
	idempRepo ports.IdempotencyRepository,
	seenCache ports.EventSeenCache,
	ledger ports.PaymentLedger,
	coordinator ports.OrderCoordinator,
	gateway ports.GatewayClient,
	verifier ports.SignatureVerifier,
	transactor ports.DBTransactor,
	keySecret string,
	webhookSecret string,
	currency string,
	log zerolog.Logger,
) *Settlement {
	s := &Settlement{
		orderRepo:     orderRepo,
		paymentRepo:   paymentRepo,
		idempRepo:     idempRepo,
		seenCache:     seenCache,
		ledger:        ledger,
		coordinator:   coordinator,
		gateway:       gateway,
		verifier:      verifier,
		transactor:    transactor,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      currency,
		log:           log,
	}
	s.handlers = map[string]webhookHandlerFunc{
		domain.EventPaymentCaptured: s.handlePaymentCaptured,
		domain.EventPaymentFailed:   s.handlePaymentFailed,
		domain.EventRefundProcessed: s.handleRefundProcessed,
	}
	return s
}

// Initiate starts a payment attempt for an order. Gateway methods get an
// intent registered with the gateway first; cash on delivery settles
// synchronously without any gateway round trip.
func (s *Settlement) Initiate(ctx context.Context, req ports.InitiateRequest) (*ports.PaymentIntentView, error) {
	if !req.Method.Valid() {
		return nil, apperror.ErrValidation(fmt.Sprintf("unknown payment method %q", req.Method))
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}
	if order.CustomerID != req.CustomerID {
		return nil, apperror.ErrAccessDenied()
	}
	if order.IsPaid() {
		return nil, apperror.ErrAlreadyPaid()
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, apperror.ErrValidation("order is cancelled")
	}

	// Pre-flight duplicate check before any gateway call; the ledger
	// re-checks inside the transaction.
	active, err := s.paymentRepo.GetActiveByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check active payment: %w", err))
	}
	if active != nil {
		return nil, apperror.ErrPaymentInFlight()
	}

	if !req.Method.RequiresGateway() {
		return s.initiateLocal(ctx, order, req.Method)
	}

	// The reference is generated before the gateway call so it can serve
	// as the gateway-side dedup key for the intent.
	reference := domain.NewPaymentReference()
	intent, err := s.gateway.CreateIntent(ctx, ports.CreateIntentRequest{
		Amount:     order.TotalAmount,
		Currency:   s.currency,
		ReceiptRef: reference,
		Notes:      map[string]string{"order_number": order.Number},
	})
	if err != nil {
		// No payment row exists yet, so the customer can simply retry.
		s.log.Warn().Err(err).
			Str("order_id", order.ID.String()).
			Msg("gateway intent creation failed")
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Row lock on the order serializes concurrent initiations; the
	// ledger's active-payment re-check runs under it.
	if err := s.orderRepo.LockForUpdate(ctx, dbTx, order.ID); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock order: %w", err))
	}

	payment, err := s.ledger.Create(ctx, dbTx, order, order.TotalAmount, req.Method, reference, &intent.IntentID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return paymentIntentView(payment), nil
}

// initiateLocal settles a cash-on-delivery payment in one transaction:
// create, complete, mark the order paid.
func (s *Settlement) initiateLocal(ctx context.Context, order *domain.Order, method domain.PaymentMethod) (*ports.PaymentIntentView, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.orderRepo.LockForUpdate(ctx, dbTx, order.ID); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock order: %w", err))
	}

	payment, err := s.ledger.Create(ctx, dbTx, order, order.TotalAmount, method, domain.NewPaymentReference(), nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.Transition(ctx, dbTx, payment, domain.PaymentStatusCompleted, "cash on delivery accepted", "system"); err != nil {
		return nil, err
	}
	if err := s.coordinator.OnPaymentCompleted(ctx, dbTx, order); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return paymentIntentView(payment), nil
}

// VerifyClientCallback settles a payment from the client-reported gateway
// result. The client is never trusted on its own: the signature must match
// and the gateway must corroborate the capture.
func (s *Settlement) VerifyClientCallback(ctx context.Context, req ports.VerifyRequest) (*ports.SettlementResult, error) {
	payment, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("Payment")
	}
	if payment.CustomerID != req.CustomerID {
		return nil, apperror.ErrAccessDenied()
	}
	if payment.GatewayOrderID == nil || *payment.GatewayOrderID != req.GatewayOrderID {
		return nil, apperror.ErrValidation("gateway order id does not match payment")
	}

	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}

	payload := CallbackPayload(req.GatewayOrderID, req.GatewayPaymentID)
	if !s.verifier.Verify(s.keySecret, payload, req.Signature) {
		if err := s.settleFailure(ctx, payment, order, "signature mismatch on client callback", "customer"); err != nil {
			// A payment that already settled cannot move to failed. The
			// forged callback changes nothing then, but the caller still
			// gets the signature error, not a state-machine code.
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || appErr.Code != apperror.CodeInvalidTransition {
				return nil, err
			}
		}
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Msg("client callback signature verification failed")
		return nil, apperror.ErrInvalidSignature()
	}

	// Corroborate with the gateway before trusting the capture.
	gwPayment, err := s.gateway.FetchPayment(ctx, req.GatewayPaymentID)
	if err != nil {
		return nil, err
	}
	if gwPayment.IntentID != req.GatewayOrderID {
		return nil, apperror.ErrValidation("gateway payment belongs to a different intent")
	}
	if gwPayment.Amount != payment.Amount {
		return nil, apperror.ErrAmountMismatch()
	}

	switch {
	case gwPayment.Captured():
		return s.settleCapture(ctx, payment, order, req.GatewayPaymentID, "client callback verified, gateway confirmed capture", "customer")
	case gwPayment.Status == "failed":
		note := gwPayment.ErrorDescription
		if note == "" {
			note = "gateway reported failure"
		}
		if err := s.settleFailure(ctx, payment, order, note, "gateway"); err != nil {
			return nil, err
		}
		return nil, apperror.ErrPaymentNotCaptured()
	case gwPayment.Status == "authorized":
		// Money is reserved but not captured yet; record the in-between
		// state and let the captured webhook finish the job.
		dbTx, err := s.transactor.Begin(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
		}
		defer dbTx.Rollback(ctx) //nolint:errcheck

		if err := s.ensureGatewayPaymentID(ctx, dbTx, payment, req.GatewayPaymentID); err != nil {
			return nil, err
		}
		if _, err := s.ledger.Transition(ctx, dbTx, payment, domain.PaymentStatusProcessing, "gateway authorized, capture pending", "gateway"); err != nil {
			return nil, err
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
		return &ports.SettlementResult{Payment: payment, Order: order}, nil
	default:
		return nil, apperror.ErrPaymentNotCaptured()
	}
}

// settleCapture completes the payment and marks the order paid in one
// transaction. A lost CAS race means a concurrent path already settled it,
// which counts as success.
func (s *Settlement) settleCapture(ctx context.Context, payment *domain.Payment, order *domain.Order, gatewayPaymentID, note, actor string) (*ports.SettlementResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ensureGatewayPaymentID(ctx, dbTx, payment, gatewayPaymentID); err != nil {
		return nil, err
	}

	applied, err := s.ledger.Transition(ctx, dbTx, payment, domain.PaymentStatusCompleted, note, actor)
	if err != nil {
		return nil, err
	}
	if applied {
		if err := s.coordinator.OnPaymentCompleted(ctx, dbTx, order); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return &ports.SettlementResult{Payment: payment, Order: order}, nil
}

// settleFailure records a failed payment and flips the order's payment
// axis. Fulfilment stays untouched so the customer can retry.
func (s *Settlement) settleFailure(ctx context.Context, payment *domain.Payment, order *domain.Order, note, actor string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	applied, err := s.ledger.Transition(ctx, dbTx, payment, domain.PaymentStatusFailed, note, actor)
	if err != nil {
		return err
	}
	if applied {
		if err := s.coordinator.OnPaymentFailed(ctx, dbTx, order); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// HandleWebhook is the authoritative settlement path. Signature first,
// then dedup, then one transaction for handler effects plus the event
// record. A nil return means the gateway should stop redelivering.
func (s *Settlement) HandleWebhook(ctx context.Context, rawBody []byte, signature, eventID string) error {
	if !s.verifier.Verify(s.webhookSecret, rawBody, signature) {
		s.log.Warn().Msg("webhook signature verification failed")
		return apperror.ErrInvalidSignature()
	}

	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return apperror.ErrValidation("malformed webhook body")
	}
	if eventID == "" {
		eventID = env.ID
	}
	if eventID == "" {
		return apperror.ErrValidation("missing webhook event id")
	}

	// Redis fast path. Only a positive answer is trusted; on error the
	// database insert below remains the authority.
	seen, err := s.seenCache.Seen(ctx, eventID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("event cache check failed, falling through to DB")
	}
	if seen {
		s.log.Debug().Str("event_id", eventID).Msg("webhook event already settled, cache hit")
		return nil
	}

	outcome := domain.EventOutcomeIgnored
	handler, known := s.handlers[env.Event]

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	existing, err := s.idempRepo.Get(ctx, eventID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("event lookup: %w", err))
	}
	if existing != nil {
		s.markSeen(ctx, eventID)
		return nil
	}

	if known {
		outcome, err = handler(ctx, dbTx, &env)
		if err != nil {
			// Rolled back: nothing applied, no event recorded, so the
			// gateway's redelivery gets a clean retry.
			return err
		}
	} else {
		s.log.Info().Str("event_type", env.Event).Msg("ignoring webhook event type")
	}

	inserted, err := s.idempRepo.Insert(ctx, dbTx, &domain.WebhookEvent{
		EventID:     eventID,
		EventType:   env.Event,
		Outcome:     outcome,
		FirstSeenAt: time.Now().UTC(),
	})
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("record event: %w", err))
	}
	if !inserted {
		// A concurrent delivery won the insert. Roll back our handler
		// effects and let the winner's commit stand.
		s.log.Debug().Str("event_id", eventID).Msg("lost event insert race to concurrent delivery")
		return nil
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.markSeen(ctx, eventID)

	s.log.Info().
		Str("event_id", eventID).
		Str("event_type", env.Event).
		Str("outcome", string(outcome)).
		Msg("webhook event settled")

	return nil
}

func (s *Settlement) markSeen(ctx context.Context, eventID string) {
	if err := s.seenCache.MarkSeen(ctx, eventID, seenCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to mark event seen in cache")
	}
}

func (s *Settlement) handlePaymentCaptured(ctx context.Context, tx pgx.Tx, env *webhookEnvelope) (domain.EventOutcome, error) {
	entity := env.Payload.Payment.Entity
	if entity == nil {
		return domain.EventOutcomeIgnored, apperror.ErrValidation("captured event without payment entity")
	}

	payment, err := s.resolvePayment(ctx, entity.ID, entity.OrderID)
	if err != nil {
		return domain.EventOutcomeIgnored, err
	}
	if payment == nil {
		s.log.Warn().
			Str("gateway_payment_id", entity.ID).
			Str("gateway_order_id", entity.OrderID).
			Msg("captured event references unknown payment")
		return domain.EventOutcomeIgnored, nil
	}

	if payment.Status == domain.PaymentStatusCompleted || payment.Status == domain.PaymentStatusRefunded {
		return domain.EventOutcomeNoop, nil
	}
	if payment.IsTerminal() {
		// Capture reported for a payment we already settled as failed or
		// cancelled. Flag it for reconciliation rather than fight the
		// state machine.
		s.log.Error().
			Str("payment_id", payment.ID.String()).
			Str("status", string(payment.Status)).
			Msg("gateway reported capture for a terminally failed payment")
		return domain.EventOutcomeNoop, nil
	}

	if entity.Amount != payment.Amount {
		s.log.Error().
			Str("payment_id", payment.ID.String()).
			Int64("webhook_amount", entity.Amount).
			Int64("payment_amount", payment.Amount).
			Msg("captured event amount disagrees with payment record")
		return domain.EventOutcomeIgnored, apperror.ErrAmountMismatch()
	}

	if err := s.ensureGatewayPaymentID(ctx, tx, payment, entity.ID); err != nil {
		return domain.EventOutcomeIgnored, err
	}

	applied, err := s.ledger.Transition(ctx, tx, payment, domain.PaymentStatusCompleted, "gateway webhook: payment captured", "gateway")
	if err != nil {
		return domain.EventOutcomeIgnored, err
	}
	if !applied {
		return domain.EventOutcomeNoop, nil
	}

	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return domain.EventOutcomeIgnored, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return domain.EventOutcomeIgnored, apperror.ErrNotFound("Order")
	}
	if err := s.coordinator.OnPaymentCompleted(ctx, tx, order); err != nil {
		return domain.EventOutcomeIgnored, err
	}

	return domain.EventOutcomeApplied, nil
}

func (s *Settlement) handlePaymentFailed(ctx context.Context, tx pgx.Tx, env *webhookEnvelope) (domain.EventOutcome, error) {
	entity := env.Payload.Payment.Entity
	if entity == nil {
		return domain.EventOutcomeIgnored, apperror.ErrValidation("failed event without payment entity")
	}

	payment, err := s.resolvePayment(ctx, entity.ID, entity.OrderID)
	if err != nil {
		return domain.EventOutcomeIgnored, err
	}
	if payment == nil {
		s.log.Warn().
			Str("gateway_payment_id", entity.ID).
			Msg("failed event references unknown payment")
		return domain.EventOutcomeIgnored, nil
	}

	if payment.IsTerminal() {
		return domain.EventOutcomeNoop, nil
	}

	note := entity.ErrorDescription
	if note == "" {
		note = "gateway reported failure"
	}

	applied, err := s.ledger.Transition(ctx, tx, payment, domain.PaymentStatusFailed, note, "gateway")
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeInvalidTransition {
			// The payment moved to a state this event no longer applies
			// to, for example completed before the failure arrived.
			s.log.Error().
				Str("payment_id", payment.ID.String()).
				Str("status", string(payment.Status)).
				Msg("failed event arrived for payment in incompatible state")
			return domain.EventOutcomeNoop, nil
		}
		return domain.EventOutcomeIgnored, err
	}
	if !applied {
		return domain.EventOutcomeNoop, nil
	}

	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return domain.EventOutcomeIgnored, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return domain.EventOutcomeIgnored, apperror.ErrNotFound("Order")
	}
	if err := s.coordinator.OnPaymentFailed(ctx, tx, order); err != nil {
		return domain.EventOutcomeIgnored, err
	}

	return domain.EventOutcomeApplied, nil
}

func (s *Settlement) handleRefundProcessed(ctx context.Context, tx pgx.Tx, env *webhookEnvelope) (domain.EventOutcome, error) {
	entity := env.Payload.Refund.Entity
	if entity == nil {
		return domain.EventOutcomeIgnored, apperror.ErrValidation("refund event without refund entity")
	}

	payment, err := s.paymentRepo.GetByGatewayPaymentID(ctx, entity.PaymentID)
	if err != nil {
		return domain.EventOutcomeIgnored, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		s.log.Warn().
			Str("gateway_payment_id", entity.PaymentID).
			Msg("refund event references unknown payment")
		return domain.EventOutcomeIgnored, nil
	}

	if payment.Refund != nil && entity.Amount != payment.Refund.Amount {
		s.log.Error().
			Str("payment_id", payment.ID.String()).
			Int64("webhook_amount", entity.Amount).
			Int64("refund_amount", payment.Refund.Amount).
			Msg("refund event amount disagrees with refund record")
		return domain.EventOutcomeIgnored, apperror.ErrAmountMismatch()
	}

	applied, err := s.ledger.FinalizeRefund(ctx, tx, payment, entity.ID, "gateway")
	if err != nil {
		return domain.EventOutcomeIgnored, err
	}
	if !applied {
		return domain.EventOutcomeNoop, nil
	}

	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return domain.EventOutcomeIgnored, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return domain.EventOutcomeIgnored, apperror.ErrNotFound("Order")
	}
	if err := s.coordinator.OnRefunded(ctx, tx, order); err != nil {
		// Roll everything back, including the payment flip, so both
		// records stay consistent for the redelivery.
		return domain.EventOutcomeIgnored, err
	}

	return domain.EventOutcomeApplied, nil
}

// resolvePayment looks a payment up by gateway payment id, falling back to
// the gateway order id for the first event that arrives before the id has
// been stored.
func (s *Settlement) resolvePayment(ctx context.Context, gatewayPaymentID, gatewayOrderID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByGatewayPaymentID(ctx, gatewayPaymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment by gateway payment id: %w", err))
	}
	if payment != nil {
		return payment, nil
	}
	if gatewayOrderID == "" {
		return nil, nil
	}
	payment, err = s.paymentRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment by gateway order id: %w", err))
	}
	return payment, nil
}

func (s *Settlement) ensureGatewayPaymentID(ctx context.Context, tx pgx.Tx, payment *domain.Payment, gatewayPaymentID string) error {
	if payment.GatewayPaymentID != nil && *payment.GatewayPaymentID == gatewayPaymentID {
		return nil
	}
	if err := s.paymentRepo.SetGatewayPaymentID(ctx, tx, payment.ID, gatewayPaymentID); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("set gateway payment id: %w", err))
	}
	payment.GatewayPaymentID = &gatewayPaymentID
	return nil
}

// RequestRefund opens the refund lane: attach the pending sub-record
// first, then ask the gateway. A definitive rejection reverts the
// sub-record; an unknown outcome leaves it pending for reconciliation.
func (s *Settlement) RequestRefund(ctx context.Context, req ports.RefundRequest) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("Payment")
	}
	if payment.CustomerID != req.CustomerID {
		return nil, apperror.ErrAccessDenied()
	}

	order, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}
	if !order.CanRefund() {
		return nil, apperror.ErrRefundNotAllowed()
	}

	amount := payment.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}

	if !payment.Method.RequiresGateway() {
		return s.refundLocal(ctx, payment, order, amount, req)
	}
	if payment.GatewayPaymentID == nil {
		return nil, apperror.ErrRefundNotAllowed()
	}

	// Record the pending refund before the gateway call so a crash in
	// between leaves evidence for reconciliation, not a silent refund.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	if err := s.ledger.AttachRefund(ctx, dbTx, payment, amount, req.Reason, req.Actor); err != nil {
		dbTx.Rollback(ctx) //nolint:errcheck
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	gwRefund, err := s.gateway.CreateRefund(ctx, *payment.GatewayPaymentID, amount, map[string]string{"reason": req.Reason})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && (appErr.Code == apperror.CodeGatewayRejected || appErr.Code == apperror.CodeRefundRejected) {
			// Definitive rejection: the gateway will never process this
			// refund, so reopen the lane.
			if clearErr := s.clearPendingRefund(ctx, payment, "gateway rejected refund"); clearErr != nil {
				return nil, clearErr
			}
			return nil, apperror.ErrRefundRejected(err)
		}
		// Unknown outcome. The pending sub-record stays; the
		// refund.processed webhook or reconciliation resolves it.
		s.log.Warn().Err(err).
			Str("payment_id", payment.ID.String()).
			Msg("gateway refund outcome unknown, leaving refund pending")
		return nil, err
	}

	dbTx, err = s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck
	if err := s.ledger.RecordGatewayRefund(ctx, dbTx, payment, gwRefund.RefundID); err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("gateway_refund_id", gwRefund.RefundID).
		Int64("amount", amount).
		Msg("refund accepted by gateway, awaiting processed event")

	return payment, nil
}

// refundLocal settles a refund for a non-gateway payment in one
// transaction; there is no external party to wait for.
func (s *Settlement) refundLocal(ctx context.Context, payment *domain.Payment, order *domain.Order, amount int64, req ports.RefundRequest) (*domain.Payment, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledger.AttachRefund(ctx, dbTx, payment, amount, req.Reason, req.Actor); err != nil {
		return nil, err
	}
	if _, err := s.ledger.FinalizeRefund(ctx, dbTx, payment, "", req.Actor); err != nil {
		return nil, err
	}
	if err := s.coordinator.OnRefunded(ctx, dbTx, order); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return payment, nil
}

func (s *Settlement) clearPendingRefund(ctx context.Context, payment *domain.Payment, reason string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledger.ClearRefund(ctx, dbTx, payment, reason); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// CancelOrder cancels an order that has not shipped. A still-pending
// payment attempt is cancelled with it; a payment mid-flight at the
// gateway is left alone and resolved by its webhook.
func (s *Settlement) CancelOrder(ctx context.Context, orderID, customerID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}
	if order.CustomerID != customerID {
		return nil, apperror.ErrAccessDenied()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.coordinator.Cancel(ctx, dbTx, order); err != nil {
		return nil, err
	}

	active, err := s.paymentRepo.GetActiveByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check active payment: %w", err))
	}
	if active != nil && active.Status == domain.PaymentStatusPending {
		if _, err := s.ledger.Transition(ctx, dbTx, active, domain.PaymentStatusCancelled, "order cancelled by customer", "customer"); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Msg("order cancelled")

	return order, nil
}

func paymentIntentView(p *domain.Payment) *ports.PaymentIntentView {
	return &ports.PaymentIntentView{
		PaymentID:      p.ID,
		Reference:      p.Reference,
		GatewayOrderID: p.GatewayOrderID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Method:         string(p.Method),
		Status:         string(p.Status),
	}
}
