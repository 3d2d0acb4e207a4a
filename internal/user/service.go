package user

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/ratelimit"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", "", err
	}
	return string(h), fmt.Sprintf("bcrypt:%d", cost), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Users is the slice of the user repository the service depends on.
type Users interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	TouchLogin(ctx context.Context, id string) error
}

// Sessions persists opaque refresh tokens.
type Sessions interface {
	Save(ctx context.Context, token, userID string, expiresAt time.Time) error
	Get(ctx context.Context, token string) (*entity.RefreshSession, error)
	Delete(ctx context.Context, token string) error
}

var (
	ErrBadCredentials = errors.New("invalid credentials")
	ErrDisabled       = errors.New("account disabled")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadRefresh     = errors.New("invalid refresh token")
)

// RateLimitedError carries the limiter's human-readable lockout message.
type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string { return e.Message }

// ValidationError marks a rejected signup payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AuthConfigFromEnv reads the signing secret from JWT_SECRET. A missing
// secret gets a random one, which invalidates tokens across restarts but
// keeps local development working.
func AuthConfigFromEnv() AuthConfig {
	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}
	return AuthConfig{Secret: secret, AccessTTL: 15 * time.Minute, RefreshTTL: 30 * 24 * time.Hour}
}

// Claims is the access-token payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         *entity.AuthView `json:"user"`
}

// Service orchestrates signup, login and token lifecycle. Failed logins are
// throttled per identifier through the shared rate limiter; note that the
// limiter is advisory (see internal/ratelimit), so the enumeration-safe
// error mapping here is the real defensive layer.
type Service struct {
	users    Users
	sessions Sessions
	hasher   PasswordHasher
	limiter  *ratelimit.Limiter
	cfg      AuthConfig
	now      func() time.Time
}

func NewService(users Users, sessions Sessions, limiter *ratelimit.Limiter, cfg AuthConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   BcryptHasher{Cost: 12},
		limiter:  limiter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithHasher overrides the password hasher. Intended for tests (bcrypt at
// cost 12 is slow).
func (s *Service) WithHasher(h PasswordHasher) *Service {
	s.hasher = h
	return s
}

// Signup registers a new customer account.
func (s *Service) Signup(ctx context.Context, email, name, password string) (*entity.AuthView, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ValidationError{Message: "a valid email is required"}
	}
	if len(password) < 8 {
		return nil, &ValidationError{Message: "password must be at least 8 characters"}
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, algo, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:           utilities.NewKSUID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		PasswordAlgo: algo,
		Role:         entity.RoleCustomer,
		Status:       entity.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return entity.NewAuthView(u), nil
}

// Login authenticates by email and password and issues a token pair.
// Failures are recorded against "login:<email>"; a locked-out identifier is
// rejected before credentials are even checked.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadCredentials
	}
	limitKey := "login:" + email
	if st := s.limiter.Check(ctx, limitKey); !st.Allowed {
		return nil, &RateLimitedError{
			Message: fmt.Sprintf("Too many failed attempts. Please try again in %d minutes.", st.LockoutRemainingMinutes),
		}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// count the miss but keep the error indistinguishable from a
			// wrong password
			s.limiter.RecordAttempt(ctx, limitKey, false)
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if u.Status == entity.StatusDisabled {
		return nil, ErrDisabled
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		s.limiter.RecordAttempt(ctx, limitKey, false)
		return nil, ErrBadCredentials
	}
	s.limiter.RecordAttempt(ctx, limitKey, true)

	if err := s.users.TouchLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, u)
}

// Refresh rotates a refresh token and issues a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	sess, err := s.sessions.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadRefresh
		}
		return nil, err
	}
	if sess.ExpiresAt.Before(s.now()) {
		_ = s.sessions.Delete(ctx, refreshToken)
		return nil, ErrBadRefresh
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, ErrBadRefresh
	}
	if u.Status == entity.StatusDisabled {
		return nil, ErrDisabled
	}
	// rotate: revoke old before issuing new
	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, u)
}

func (s *Service) issueTokens(ctx context.Context, u *entity.User) (*TokenPair, error) {
	now := s.now()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.cfg.Secret)
	if err != nil {
		return nil, err
	}

	rtBytes := make([]byte, 32)
	if _, err := rand.Read(rtBytes); err != nil {
		return nil, err
	}
	refresh := base64.RawURLEncoding.EncodeToString(rtBytes)
	if err := s.sessions.Save(ctx, refresh, u.ID, now.Add(s.cfg.RefreshTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  signed,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
		User:         entity.NewAuthView(u),
	}, nil
}

// ParseToken validates an access token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrBadCredentials
	}
	return &claims, nil
}
