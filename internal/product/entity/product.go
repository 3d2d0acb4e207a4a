package entity

import "time"

// Product statuses.
const (
	StatusActive     = "active"
	StatusOutOfStock = "out_of_stock"
	StatusArchived   = "archived"
)

// Product is one catalog entry. Prices are integer BDT paisa (cents) to
// avoid float money arithmetic.
type Product struct {
	ID             string     `json:"id" db:"id"`
	Slug           string     `json:"slug" db:"slug"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description,omitempty" db:"description"`
	Category       string     `json:"category,omitempty" db:"category"`
	PriceCents     int64      `json:"price_cents" db:"price_cents"`
	CompareAtCents *int64     `json:"compare_at_cents,omitempty" db:"compare_at_cents"`
	ImageURL       string     `json:"image_url,omitempty" db:"image_url"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty" db:"archived_at"`
}
