package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order/entity"
	productentity "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

// Store is the slice of the order repository the service depends on.
type Store interface {
	Create(ctx context.Context, o *entity.Order, items []entity.OrderItem) error
	GetGuestByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetItems(ctx context.Context, orderID string) ([]entity.OrderItem, error)
	UpdateStatus(ctx context.Context, id, from, to string) (int64, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error)
}

// Catalog resolves product snapshots for checkout pricing.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*productentity.Product, error)
}

// sentinel errors for common failure modes
var (
	ErrNotFound           = errors.New("order not found")
	ErrVerificationFailed = errors.New("verification failed")
	ErrBadTransition      = errors.New("invalid status transition")
	ErrConflict           = errors.New("order changed concurrently")
)

// ValidationError names the malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RateLimitedError carries the limiter's human-readable lockout message.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string { return e.Message }

// Service orchestrates checkout, guest lookup and the status lifecycle.
type Service struct {
	store   Store
	catalog Catalog
	limiter *ratelimit.Limiter
	// ShippingFeeCents is the flat delivery fee applied to every order.
	ShippingFeeCents int64
	now              func() time.Time
}

func NewService(store Store, catalog Catalog, limiter *ratelimit.Limiter) *Service {
	return &Service{
		store:            store,
		catalog:          catalog,
		limiter:          limiter,
		ShippingFeeCents: 10000, // 100 BDT flat
		now:              time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest carries everything needed to place an order. A nil UserID
// places a guest order.
type CheckoutRequest struct {
	UserID          *string        `json:"-"`
	Items           []CheckoutItem `json:"items"`
	PaymentMethod   string         `json:"payment_method"`
	CustomerName    string         `json:"customer_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	ShippingAddress string         `json:"shipping_address"`
	City            string         `json:"city"`
	Note            string         `json:"note"`
}

// Checkout validates the request, prices the cart from the catalog and
// persists the order. Guest orders get their contact details embedded in
// the notes field so the guest lookup verifier can match them later.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*entity.Order, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	if !entity.ValidPaymentMethod(req.PaymentMethod) {
		return nil, &ValidationError{Field: "payment_method", Message: "unsupported payment method"}
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, &ValidationError{Field: "customer_name", Message: "name is required"}
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return nil, &ValidationError{Field: "shipping_address", Message: "shipping address is required"}
	}
	if req.Email != "" && !ValidEmail(req.Email) {
		return nil, &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if req.Phone != "" && !ValidBDPhone(req.Phone) {
		return nil, &ValidationError{Field: "phone", Message: "invalid phone number"}
	}
	if req.UserID == nil && req.Email == "" && req.Phone == "" {
		return nil, &ValidationError{Field: "email", Message: "guest checkout requires an email or phone"}
	}

	ids := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &ValidationError{Field: "items", Message: "quantity must be positive"}
		}
		ids = append(ids, it.ProductID)
	}
	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	now := s.now().UTC()
	orderID := utilities.NewKSUID()
	var subtotal int64
	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok || p.Status == productentity.StatusArchived {
			return nil, &ValidationError{Field: "items", Message: "product is not available"}
		}
		subtotal += p.PriceCents * int64(it.Quantity)
		items = append(items, entity.OrderItem{
			ID:             utilities.NewKSUID(),
			OrderID:        orderID,
			ProductID:      p.ID,
			Title:          p.Title,
			UnitPriceCents: p.PriceCents,
			Quantity:       it.Quantity,
		})
	}

	o := &entity.Order{
		ID:              orderID,
		OrderNumber:     utilities.NewOrderNumber(now),
		UserID:          req.UserID,
		Status:          entity.StatusPending,
		PaymentMethod:   req.PaymentMethod,
		SubtotalCents:   subtotal,
		ShippingCents:   s.ShippingFeeCents,
		TotalCents:      subtotal + s.ShippingFeeCents,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		City:            strings.TrimSpace(req.City),
		Notes:           buildNotes(req),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, o, items); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// buildNotes embeds the contact block guests are verified against, then any
// free-text note.
func buildNotes(req CheckoutRequest) string {
	block := fmt.Sprintf("Name: %s | Email: %s | Phone: %s",
		strings.TrimSpace(req.CustomerName),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Phone))
	if n := strings.TrimSpace(req.Note); n != "" {
		return block + " | Note: " + n
	}
	return block
}

// LookupRequest is a guest's claim to an order.
type LookupRequest struct {
	OrderNumber string `json:"orderNumber"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// GuestLookup authorizes and serves a guest order view. Failures are
// reported with deliberately generic errors so callers cannot probe which
// part of the claim was wrong, and repeated failures per order number are
// throttled.
func (s *Service) GuestLookup(ctx context.Context, req LookupRequest) (*entity.GuestOrderView, error) {
	number := strings.ToUpper(strings.TrimSpace(req.OrderNumber))
	if number == "" {
		return nil, &ValidationError{Field: "orderNumber", Message: "order number is required"}
	}
	if req.Email == "" && req.Phone == "" {
		return nil, &ValidationError{Field: "email", Message: "an email or phone is required"}
	}
	if req.Email != "" && !ValidEmail(req.Email) {
		return nil, &ValidationError{Field: "email", Message: "invalid email address"}
	}
	if req.Phone != "" && !ValidBDPhone(req.Phone) {
		return nil, &ValidationError{Field: "phone", Message: "invalid phone number"}
	}

	limitKey := "lookup:" + number
	if st := s.limiter.Check(ctx, limitKey); !st.Allowed {
		return nil, &RateLimitedError{
			Message: fmt.Sprintf("Too many failed attempts. Please try again in %d minutes.", st.LockoutRemainingMinutes),
		}
	}

	o, err := s.store.GetGuestByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.limiter.RecordAttempt(ctx, limitKey, false)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch order: %w", err)
	}
	if !verifyContact(o.Notes, req.Email, req.Phone) {
		s.limiter.RecordAttempt(ctx, limitKey, false)
		return nil, ErrVerificationFailed
	}
	s.limiter.RecordAttempt(ctx, limitKey, true)

	items, err := s.store.GetItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	return entity.NewGuestOrderView(o, items), nil
}

// Get returns any order by its public number.
func (s *Service) Get(ctx context.Context, orderNumber string) (*entity.Order, error) {
	o, err := s.store.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// UpdateStatus transitions the order with the given public number to the
// target status, enforcing the lifecycle rules.
func (s *Service) UpdateStatus(ctx context.Context, orderNumber, to string) (*entity.Order, error) {
	o, err := s.store.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !entity.CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, to)
	}
	rows, err := s.store.UpdateStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrConflict
	}
	o.Status = to
	return o, nil
}

// List returns orders for the admin dashboard with clamped pagination.
func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, status, limit, offset)
}
