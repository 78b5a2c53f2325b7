package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"order-settlement/internal/core/domain"
	"order-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// The in-memory repos hand out copies, the way rows scanned from the
// database would be. Callers mutating a returned struct never touch the
// stored record; only the conditional update methods write back.

func copyPayment(p *domain.Payment) *domain.Payment {
	cp := *p
	if p.GatewayOrderID != nil {
		v := *p.GatewayOrderID
		cp.GatewayOrderID = &v
	}
	if p.GatewayPaymentID != nil {
		v := *p.GatewayPaymentID
		cp.GatewayPaymentID = &v
	}
	if p.FailureReason != nil {
		v := *p.FailureReason
		cp.FailureReason = &v
	}
	if p.Refund != nil {
		r := *p.Refund
		if p.Refund.GatewayRefundID != nil {
			id := *p.Refund.GatewayRefundID
			r.GatewayRefundID = &id
		}
		if p.Refund.ProcessedAt != nil {
			at := *p.Refund.ProcessedAt
			r.ProcessedAt = &at
		}
		cp.Refund = &r
	}
	return &cp
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.LineItem(nil), o.Items...)
	return &cp
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]*domain.Order
	rowLocks map[uuid.UUID]*sync.Mutex
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{
		orders:   make(map[uuid.UUID]*domain.Order),
		rowLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; ok {
		return fmt.Errorf("order already exists")
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

// LockForUpdate emulates the row lock a SELECT FOR UPDATE takes: held
// until the transaction ends, so concurrent payment initiations for the
// same order serialize here just as they do against Postgres.
func (r *inMemoryOrderRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	if _, ok := r.orders[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("lock order %s: not found", id)
	}
	lock, ok := r.rowLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.rowLocks[id] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	if nt, ok := tx.(*noopTx); ok {
		nt.onRelease(lock.Unlock)
		return nil
	}
	lock.Unlock()
	return nil
}

func (r *inMemoryOrderRepo) UpdateStatuses(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected domain.OrderStatus, status domain.OrderStatus, payStatus domain.OrderPaymentStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = status
	o.PaymentStatus = payStatus
	o.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryOrderRepo) UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, payStatus domain.OrderPaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order not found")
	}
	o.PaymentStatus = payStatus
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; ok {
		return fmt.Errorf("payment already exists")
	}
	r.payments[payment.ID] = copyPayment(payment)
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	return copyPayment(p), nil
}

func (r *inMemoryPaymentRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.GatewayOrderID != nil && *p.GatewayOrderID == gatewayOrderID {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.GatewayPaymentID != nil && *p.GatewayPaymentID == gatewayPaymentID {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.OrderID != orderID {
			continue
		}
		if p.Status == domain.PaymentStatusPending || p.Status == domain.PaymentStatusProcessing {
			return copyPayment(p), nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) UpdateStatusCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.PaymentStatus, failure *domain.FailureReason) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	if failure != nil {
		v := *failure
		p.FailureReason = &v
	} else {
		p.FailureReason = nil
	}
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryPaymentRepo) SetGatewayPaymentID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayPaymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	p.GatewayPaymentID = &gatewayPaymentID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryPaymentRepo) AttachRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID, refund *domain.Refund) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != domain.PaymentStatusCompleted || p.Refund != nil {
		return false, nil
	}
	v := *refund
	p.Refund = &v
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryPaymentRepo) SetRefundGatewayID(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayRefundID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Refund == nil {
		return fmt.Errorf("payment has no refund")
	}
	p.Refund.GatewayRefundID = &gatewayRefundID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryPaymentRepo) ClearRefund(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	p.Refund = nil
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryPaymentRepo) FinalizeRefundCAS(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != domain.PaymentStatusCompleted || p.Refund == nil || p.Refund.Status != domain.RefundStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	p.Status = domain.PaymentStatusRefunded
	p.Refund.Status = domain.RefundStatusProcessed
	p.Refund.ProcessedAt = &now
	p.UpdatedAt = now
	return true, nil
}

func (r *inMemoryPaymentRepo) List(ctx context.Context, params ports.PaymentListParams) ([]domain.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Payment
	for _, p := range r.payments {
		if p.CustomerID != params.CustomerID {
			continue
		}
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		if params.Method != nil && p.Method != *params.Method {
			continue
		}
		matched = append(matched, *copyPayment(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// --- In-Memory Timeline Repo ---

type inMemoryTimelineRepo struct {
	mu      sync.RWMutex
	entries []domain.TimelineEntry
}

func newInMemoryTimelineRepo() *inMemoryTimelineRepo {
	return &inMemoryTimelineRepo{}
}

func (r *inMemoryTimelineRepo) Append(ctx context.Context, tx pgx.Tx, entry *domain.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryTimelineRepo) ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]domain.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.TimelineEntry
	for _, e := range r.entries {
		if e.PaymentID == paymentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu     sync.Mutex
	events map[string]*domain.WebhookEvent
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{events: make(map[string]*domain.WebhookEvent)}
}

func (r *inMemoryIdempotencyRepo) Insert(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.EventID]; ok {
		return false, nil
	}
	cp := *event
	r.events[event.EventID] = &cp
	return true, nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[eventID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing. It holds
// release hooks so emulated row locks let go at transaction end, whether
// the flow commits or the deferred rollback fires first.
type noopTx struct {
	mu      sync.Mutex
	done    bool
	onClose []func()
}

func (t *noopTx) onRelease(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClose = append(t.onClose, fn)
}

func (t *noopTx) release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	for _, fn := range t.onClose {
		fn()
	}
	t.onClose = nil
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
