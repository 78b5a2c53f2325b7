package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// OrderPaymentStatus tracks the money axis of an order, independent of
// fulfilment. The two axes are constrained: an order is never confirmed
// while its payment is pending or failed.
type OrderPaymentStatus string

const (
	OrderPaymentPending  OrderPaymentStatus = "pending"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentFailed   OrderPaymentStatus = "failed"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

// LineItem is a single ordered product with the variant chosen at checkout.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	Quantity  int       `json:"quantity"` // >= 1
	UnitPrice int64     `json:"unit_price"`
}

// Address is a point-in-time snapshot copied onto the order at checkout.
// It is never a live reference to the customer's address book.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order represents a placed customer order.
type Order struct {
	ID                 uuid.UUID          `json:"id"`
	Number             string             `json:"number"` // Human-readable, never reused
	CustomerID         uuid.UUID          `json:"customer_id"`
	Items              []LineItem         `json:"items"`
	TotalAmount        int64              `json:"total_amount"` // Smallest currency unit (paise)
	Status             OrderStatus        `json:"status"`
	PaymentStatus      OrderPaymentStatus `json:"payment_status"`
	ShippingAddress    Address            `json:"shipping_address"`
	BillingAddress     Address            `json:"billing_address"`
	PlacedAt           time.Time          `json:"placed_at"`
	ExpectedDeliveryAt *time.Time         `json:"expected_delivery_at,omitempty"`
	DeliveredAt        *time.Time         `json:"delivered_at,omitempty"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NewOrderNumber generates a human-readable order number.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UTC().UnixMilli(), uuid.NewString()[:8])
}

// IsTerminal returns true when the order can no longer change state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered ||
		o.Status == OrderStatusCancelled ||
		o.Status == OrderStatusRefunded
}

// CanCancel reports whether the order may still be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// CanRefund reports whether the order may move to refunded.
func (o *Order) CanRefund() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusDelivered
}

// IsPaid reports whether the order's payment axis is settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == OrderPaymentPaid
}
