package entity

import "time"

// Submission statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Submission is a customer's claim of a manual payment (bKash/Nagad) for an
// order: the wallet number they sent from plus the transaction id the wallet
// app displayed. An admin verifies or rejects it against the wallet
// statement.
type Submission struct {
	ID           string     `json:"id" db:"id"`
	OrderNumber  string     `json:"order_number" db:"order_number"`
	Method       string     `json:"method" db:"method"`
	SenderNumber string     `json:"sender_number" db:"sender_number"`
	TrxID        string     `json:"trx_id" db:"trx_id"`
	Status       string     `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}
