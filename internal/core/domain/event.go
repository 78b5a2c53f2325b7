package domain

import "time"

// Gateway webhook event types the engine settles on.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
)

// EventOutcome records what processing a first-seen event id did.
type EventOutcome string

const (
	// EventOutcomeApplied: the event drove a state transition.
	EventOutcomeApplied EventOutcome = "applied"
	// EventOutcomeNoop: the event was authentic but the payment had already
	// advanced past it (late or out-of-order delivery).
	EventOutcomeNoop EventOutcome = "noop"
	// EventOutcomeIgnored: the event type has no registered handler.
	EventOutcomeIgnored EventOutcome = "ignored"
)

// WebhookEvent is the idempotency record for a gateway event id. It is
// created the first time an id is processed, inside the same transaction
// as the mutation it guards, and never mutated afterwards.
type WebhookEvent struct {
	EventID     string       `json:"event_id"`
	EventType   string       `json:"event_type"`
	Outcome     EventOutcome `json:"outcome"`
	FirstSeenAt time.Time    `json:"first_seen_at"`
}
