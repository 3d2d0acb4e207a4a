package order

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order/entity"
	productentity "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
)

type memStore struct {
	orders map[string]*entity.Order // by ID
	items  map[string][]entity.OrderItem
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*entity.Order{}, items: map[string][]entity.OrderItem{}}
}

func (m *memStore) Create(_ context.Context, o *entity.Order, items []entity.OrderItem) error {
	cp := *o
	m.orders[o.ID] = &cp
	m.items[o.ID] = items
	return nil
}

func (m *memStore) GetGuestByNumber(_ context.Context, orderNumber string) (*entity.Order, error) {
	want := strings.ToUpper(strings.TrimSpace(orderNumber))
	for _, o := range m.orders {
		if o.OrderNumber == want && o.UserID == nil {
			cp := *o
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) GetByNumber(_ context.Context, orderNumber string) (*entity.Order, error) {
	want := strings.ToUpper(strings.TrimSpace(orderNumber))
	for _, o := range m.orders {
		if o.OrderNumber == want {
			cp := *o
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) GetItems(_ context.Context, orderID string) ([]entity.OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memStore) UpdateStatus(_ context.Context, id, from, to string) (int64, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	return 1, nil
}

func (m *memStore) List(_ context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	out := []*entity.Order{}
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

type memCatalog map[string]*productentity.Product

func (m memCatalog) GetByIDs(_ context.Context, ids []string) (map[string]*productentity.Product, error) {
	out := map[string]*productentity.Product{}
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	catalog := memCatalog{
		"p1": {ID: "p1", Title: "Oversized Tee", PriceCents: 59900, Status: productentity.StatusActive},
		"p2": {ID: "p2", Title: "Cargo Pants", PriceCents: 129900, Status: productentity.StatusActive},
		"p3": {ID: "p3", Title: "Retired Hoodie", PriceCents: 99900, Status: productentity.StatusArchived},
	}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
	return NewService(store, catalog, limiter), store
}

func guestCheckout() CheckoutRequest {
	return CheckoutRequest{
		Items:           []CheckoutItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}},
		PaymentMethod:   entity.PaymentBkash,
		CustomerName:    "Rafi Ahmed",
		Email:           "rafi@example.com",
		Phone:           "+8801712345678",
		ShippingAddress: "12 Gulshan Ave",
		City:            "Dhaka",
	}
}

func TestCheckoutPricesFromCatalog(t *testing.T) {
	svc, store := newTestService()
	o, err := svc.Checkout(context.Background(), guestCheckout())
	require.NoError(t, err)

	assert.Equal(t, int64(2*59900+129900), o.SubtotalCents)
	assert.Equal(t, o.SubtotalCents+svc.ShippingFeeCents, o.TotalCents)
	assert.Equal(t, entity.StatusPending, o.Status)
	assert.Nil(t, o.UserID)
	assert.Regexp(t, `^ORD-\d{8}-[A-Z2-9]{8}$`, o.OrderNumber)
	assert.Len(t, store.items[o.ID], 2)
	// line items snapshot catalog prices
	assert.Equal(t, int64(59900), store.items[o.ID][0].UnitPriceCents)
}

func TestCheckoutEmbedsGuestContactInNotes(t *testing.T) {
	svc, _ := newTestService()
	req := guestCheckout()
	req.Note = "deliver after 6pm"
	o, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, o.Notes, "Email: rafi@example.com")
	assert.Contains(t, o.Notes, "Phone: +8801712345678")
	assert.Contains(t, o.Notes, "Note: deliver after 6pm")
}

func TestCheckoutValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CheckoutRequest)
		field  string
	}{
		{"no items", func(r *CheckoutRequest) { r.Items = nil }, "items"},
		{"zero quantity", func(r *CheckoutRequest) { r.Items[0].Quantity = 0 }, "items"},
		{"bad method", func(r *CheckoutRequest) { r.PaymentMethod = "paypal" }, "payment_method"},
		{"no name", func(r *CheckoutRequest) { r.CustomerName = " " }, "customer_name"},
		{"no address", func(r *CheckoutRequest) { r.ShippingAddress = "" }, "shipping_address"},
		{"bad email", func(r *CheckoutRequest) { r.Email = "nope" }, "email"},
		{"bad phone", func(r *CheckoutRequest) { r.Phone = "123" }, "phone"},
		{"guest without contact", func(r *CheckoutRequest) { r.Email = ""; r.Phone = "" }, "email"},
		{"archived product", func(r *CheckoutRequest) { r.Items[0].ProductID = "p3" }, "items"},
		{"unknown product", func(r *CheckoutRequest) { r.Items[0].ProductID = "ghost" }, "items"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := guestCheckout()
			tc.mutate(&req)
			_, err := svc.Checkout(ctx, req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestGuestLookupEndToEnd(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	// lowercase order number, bare local phone format against a stored +880 value
	view, err := svc.GuestLookup(ctx, LookupRequest{
		OrderNumber: strings.ToLower(o.OrderNumber),
		Phone:       "01712345678",
	})
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, view.OrderNumber)
	assert.Equal(t, o.TotalCents, view.TotalCents)
	assert.Len(t, view.Items, 2)
}

func TestGuestLookupByEmailIgnoresCase(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	view, err := svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "RAFI@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, view.OrderNumber)
}

func TestGuestLookupValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.GuestLookup(ctx, LookupRequest{Email: "a@b.co"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "orderNumber", ve.Field)

	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: "ORD-20260103-ABCDEFGH"})
	require.ErrorAs(t, err, &ve)

	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: "ORD-20260103-ABCDEFGH", Email: "nope"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: "ORD-20260103-ABCDEFGH", Phone: "123"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)
}

func TestGuestLookupGenericFailures(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: "ORD-20260103-XXXXXXXX", Email: "rafi@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "someone.else@example.com"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestGuestLookupNeverMatchesRegisteredOrders(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	req := guestCheckout()
	uid := "user_1"
	req.UserID = &uid
	o, err := svc.Checkout(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, store.orders[o.ID].UserID)

	// same indistinguishable not-found as a truly absent order
	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "rafi@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGuestLookupRateLimited(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "wrong@example.com"})
		assert.ErrorIs(t, err, ErrVerificationFailed)
	}
	// even correct credentials are rejected during lockout
	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "rafi@example.com"})
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "Too many failed attempts")
}

func TestGuestLookupSuccessResetsLimiter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _ = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "wrong@example.com"})
	}
	_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "rafi@example.com"})
	require.NoError(t, err)

	// counter is back to zero: five more failures are needed to lock out
	for i := 0; i < 4; i++ {
		_, err = svc.GuestLookup(ctx, LookupRequest{OrderNumber: o.OrderNumber, Email: "wrong@example.com"})
		assert.ErrorIs(t, err, ErrVerificationFailed)
	}
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	for _, next := range []string{
		entity.StatusConfirmed, entity.StatusProcessing, entity.StatusShipped, entity.StatusDelivered,
	} {
		o2, err := svc.UpdateStatus(ctx, o.OrderNumber, next)
		require.NoError(t, err)
		assert.Equal(t, next, o2.Status)
	}

	// delivered is terminal
	_, err = svc.UpdateStatus(ctx, o.OrderNumber, entity.StatusCancelled)
	assert.ErrorIs(t, err, ErrBadTransition)
}

func TestUpdateStatusRejectsSkips(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o, err := svc.Checkout(ctx, guestCheckout())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.OrderNumber, entity.StatusShipped)
	assert.ErrorIs(t, err, ErrBadTransition)

	_, err = svc.UpdateStatus(ctx, "ORD-20260103-MISSING1", entity.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}
