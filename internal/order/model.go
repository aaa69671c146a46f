package order

import (
	"fmt"
	"time"
)

// Status is the fulfillment axis of an order's lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus is the payment axis, independent of Status.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPaypal   PaymentMethod = "paypal"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodPaypal:
		return true
	}
	return false
}

// Item is an immutable snapshot of a cart line, captured at order creation.
// Later price/name changes in the catalog never reach past orders.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
}

// Customer is the free-form contact record attached to an order.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Address is a free-form shipping/billing address, validated for required
// fields only.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country"`
}

// Pricing carries the caller-computed money breakdown. Values are stored
// verbatim; the factory cross-checks the subtotal against the items and
// logs a mismatch but does not correct it.
type Pricing struct {
	Subtotal     string `json:"subtotal"`
	Tax          string `json:"tax"`
	ShippingCost string `json:"shipping_cost"`
	Total        string `json:"total"`
}

type Order struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	UserID        string        `json:"user_id,omitempty"`
	Items         []Item        `json:"items"`
	Customer      Customer      `json:"customer"`
	ShippingAddr  Address       `json:"shipping_address"`
	BillingAddr   Address       `json:"billing_address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        Status        `json:"status"`
	Subtotal      string        `json:"subtotal"`
	Tax           string        `json:"tax"`
	ShippingCost  string        `json:"shipping_cost"`
	Total         string        `json:"total"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ValidationError reports a missing or malformed required field. It is the
// caller's fault and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
