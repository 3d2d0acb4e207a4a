package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/entity"
)

type memUsers struct {
	byEmail map[string]*entity.User
	byID    map[string]*entity.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*entity.User{}, byID: map[string]*entity.User{}}
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	cp := *u
	m.byEmail[u.Email] = &cp
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) TouchLogin(_ context.Context, id string) error { return nil }

type memSessions struct {
	rows map[string]*entity.RefreshSession
}

func (m *memSessions) Save(_ context.Context, token, userID string, expiresAt time.Time) error {
	m.rows[token] = &entity.RefreshSession{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*entity.RefreshSession, error) {
	s, ok := m.rows[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	delete(m.rows, token)
	return nil
}

// plainHasher keeps the tests fast; bcrypt cost 12 is deliberately slow.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, string, error) { return "plain:" + pw, "plain", nil }
func (plainHasher) Verify(hash, pw string) bool            { return hash == "plain:"+pw }

func newTestService() (*Service, *memSessions) {
	sessions := &memSessions{rows: map[string]*entity.RefreshSession{}}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
	cfg := AuthConfig{Secret: []byte("test-secret"), AccessTTL: 15 * time.Minute, RefreshTTL: 30 * 24 * time.Hour}
	svc := NewService(newMemUsers(), sessions, limiter, cfg).WithHasher(plainHasher{})
	return svc, sessions
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Signup(ctx, "  Nadia@Example.com ", "Nadia", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, "nadia@example.com", view.Email, "email is normalized")
	assert.Equal(t, entity.RoleCustomer, view.Role)

	pair, err := svc.Login(ctx, "nadia@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "nadia@example.com", claims.Email)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.Equal(t, view.ID, claims.Subject)
}

func TestSignupRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.co", "A", "longenough")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "a@b.co", "A", "longenough")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Signup(ctx, "c@d.co", "C", "short")
	assert.Error(t, err)

	_, err = svc.Signup(ctx, "not-an-email", "X", "longenough")
	assert.Error(t, err)
}

func TestLoginFailuresAreGenericAndThrottled(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, "a@b.co", "A", "longenough")
	require.NoError(t, err)

	// unknown account and wrong password are indistinguishable
	_, err = svc.Login(ctx, "ghost@b.co", "whatever")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = svc.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(ctx, "a@b.co", "wrong")
	}
	_, err = svc.Login(ctx, "a@b.co", "longenough")
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Contains(t, rl.Message, "Too many failed attempts")
}

func TestLoginSuccessResetsThrottle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, "a@b.co", "A", "longenough")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(ctx, "a@b.co", "wrong")
	}
	_, err = svc.Login(ctx, "a@b.co", "longenough")
	require.NoError(t, err)

	// back to a full allowance
	_, err = svc.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestRefreshRotates(t *testing.T) {
	svc, sessions := newTestService()
	ctx := context.Background()
	_, err := svc.Signup(ctx, "a@b.co", "A", "longenough")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "a@b.co", "longenough")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the old token is revoked
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrBadRefresh)
	assert.Len(t, sessions.rows, 1)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
