package entity

import "time"

// Roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a registered account (customer or admin).
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	PasswordAlgo string     `json:"-" db:"password_algo"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// AuthView is the minimal projection returned after authentication.
type AuthView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// NewAuthView projects u for auth responses.
func NewAuthView(u *User) *AuthView {
	return &AuthView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// RefreshSession is a persisted opaque refresh token.
type RefreshSession struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
}
