package entity

import "time"

// Order statuses.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentStripe = "stripe"
	PaymentBkash  = "bkash"
	PaymentNagad  = "nagad"
	PaymentCOD    = "cod"
)

// allowedTransitions caps the admin/payment status flow. Cancelled is a
// terminal state reachable from anything not yet delivered.
var allowedTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentStripe, PaymentBkash, PaymentNagad, PaymentCOD:
		return true
	}
	return false
}

// Order is a persisted storefront order. A nil UserID marks a guest order;
// guest contact details live embedded in Notes as
// "Name: ... | Email: ... | Phone: ..." and are what the guest lookup
// verifier matches against.
type Order struct {
	ID              string     `json:"id" db:"id"`
	OrderNumber     string     `json:"order_number" db:"order_number"`
	UserID          *string    `json:"user_id,omitempty" db:"user_id"`
	Status          string     `json:"status" db:"status"`
	PaymentMethod   string     `json:"payment_method" db:"payment_method"`
	SubtotalCents   int64      `json:"subtotal_cents" db:"subtotal_cents"`
	ShippingCents   int64      `json:"shipping_cents" db:"shipping_cents"`
	TotalCents      int64      `json:"total_cents" db:"total_cents"`
	CustomerName    string     `json:"customer_name" db:"customer_name"`
	ShippingAddress string     `json:"shipping_address" db:"shipping_address"`
	City            string     `json:"city,omitempty" db:"city"`
	Notes           string     `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// OrderItem is a price snapshot of one product at checkout time.
type OrderItem struct {
	ID             string `json:"id" db:"id"`
	OrderID        string `json:"order_id" db:"order_id"`
	ProductID      string `json:"product_id" db:"product_id"`
	Title          string `json:"title" db:"title"`
	UnitPriceCents int64  `json:"unit_price_cents" db:"unit_price_cents"`
	Quantity       int    `json:"quantity" db:"quantity"`
}

// GuestOrderView is the sanitized projection returned from guest lookup.
// It deliberately excludes the raw Notes field (which carries the contact
// block) and any user linkage.
type GuestOrderView struct {
	OrderNumber     string      `json:"order_number"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	SubtotalCents   int64       `json:"subtotal_cents"`
	ShippingCents   int64       `json:"shipping_cents"`
	TotalCents      int64       `json:"total_cents"`
	CustomerName    string      `json:"customer_name"`
	ShippingAddress string      `json:"shipping_address"`
	City            string      `json:"city,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items"`
}

// NewGuestOrderView builds the sanitized projection for o plus its items.
func NewGuestOrderView(o *Order, items []OrderItem) *GuestOrderView {
	return &GuestOrderView{
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		SubtotalCents:   o.SubtotalCents,
		ShippingCents:   o.ShippingCents,
		TotalCents:      o.TotalCents,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		City:            o.City,
		CreatedAt:       o.CreatedAt,
		Items:           items,
	}
}
