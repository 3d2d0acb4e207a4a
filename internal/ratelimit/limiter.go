package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Config holds the limiter thresholds for one logical operation
// (login, guest order lookup, ...).
type Config struct {
	// MaxAttempts is the number of failed attempts tolerated within Window
	// before the key is locked out.
	MaxAttempts int
	// Window is the span within which failed attempts accumulate. Once a
	// window elapses below the threshold the counter resets.
	Window time.Duration
	// Lockout is how long further attempts are rejected outright after
	// MaxAttempts is reached.
	Lockout time.Duration
}

// DefaultConfig mirrors the storefront defaults: 5 attempts per 15 minutes,
// 30 minute lockout.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute, Lockout: 30 * time.Minute}
}

// State is the persisted counter for a single key. Times are epoch
// milliseconds to stay compatible with the storage format consumed by the
// storefront clients.
type State struct {
	Attempts         int    `json:"attempts"`
	FirstAttemptTime int64  `json:"firstAttemptTime"`
	LockoutUntil     *int64 `json:"lockoutUntil,omitempty"`
}

// Store persists limiter state by key. Get returns (nil, nil) when no state
// is recorded. Implementations are free to fail; the limiter swallows store
// errors and behaves as if no state were recorded, since this is an advisory
// control that prioritizes availability over strict enforcement.
type Store interface {
	Get(ctx context.Context, key string) (*State, error)
	Set(ctx context.Context, key string, st State) error
	Delete(ctx context.Context, key string) error
}

// storageKeyPrefix matches the key format the storefront persists under.
const storageKeyPrefix = "rateLimit_"

// StorageKey returns the full persisted key for a logical limiter key.
func StorageKey(key string) string {
	return storageKeyPrefix + key
}

// Status is the result of a Check call.
type Status struct {
	Allowed                 bool
	RemainingAttempts       int
	LockoutRemainingMinutes int
}

// Limiter applies sliding-window-plus-lockout counting per key on top of a
// narrow Store. All transition logic lives here so it stays testable
// independent of the storage side effect.
type Limiter struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func New(store Store, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = DefaultConfig().Lockout
	}
	return &Limiter{store: store, cfg: cfg, now: time.Now}
}

// WithClock overrides the limiter's clock. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check resolves the effective state for key without mutating it. Lockout
// expiry and window expiry are applied lazily: an expired lockout or an
// elapsed window reads as a fresh state even though the stored record has
// not been rewritten yet.
func (l *Limiter) Check(ctx context.Context, key string) Status {
	fresh := Status{Allowed: true, RemainingAttempts: l.cfg.MaxAttempts}
	st, err := l.store.Get(ctx, StorageKey(key))
	if err != nil || st == nil {
		return fresh
	}
	nowMs := l.now().UnixMilli()

	if st.LockoutUntil != nil {
		if nowMs < *st.LockoutUntil {
			return Status{
				Allowed:                 false,
				RemainingAttempts:       0,
				LockoutRemainingMinutes: ceilMinutes(*st.LockoutUntil - nowMs),
			}
		}
		// lockout expired
		return fresh
	}
	if nowMs-st.FirstAttemptTime > l.cfg.Window.Milliseconds() {
		// window elapsed below threshold
		return fresh
	}
	remaining := l.cfg.MaxAttempts - st.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return Status{Allowed: remaining > 0, RemainingAttempts: remaining}
}

// RecordAttempt mutates the persisted state for key per the transition rules
// and returns a human-readable message describing the outcome. A successful
// attempt fully resets the key regardless of its current state and returns
// an empty message.
func (l *Limiter) RecordAttempt(ctx context.Context, key string, success bool) string {
	sk := StorageKey(key)
	if success {
		_ = l.store.Delete(ctx, sk)
		return ""
	}

	nowMs := l.now().UnixMilli()
	st, err := l.store.Get(ctx, sk)
	if err != nil {
		st = nil
	}

	if st != nil && st.LockoutUntil != nil {
		if nowMs < *st.LockoutUntil {
			// still locked; do not extend the lockout
			return lockoutMessage(*st.LockoutUntil - nowMs)
		}
		st = nil // lockout expired, start over
	}
	if st != nil && nowMs-st.FirstAttemptTime > l.cfg.Window.Milliseconds() {
		st = nil // window elapsed below threshold, start over
	}

	next := State{Attempts: 1, FirstAttemptTime: nowMs}
	if st != nil {
		next = State{Attempts: st.Attempts + 1, FirstAttemptTime: st.FirstAttemptTime}
	}
	if next.Attempts >= l.cfg.MaxAttempts {
		until := nowMs + l.cfg.Lockout.Milliseconds()
		next.LockoutUntil = &until
		_ = l.store.Set(ctx, sk, next)
		return lockoutMessage(l.cfg.Lockout.Milliseconds())
	}
	_ = l.store.Set(ctx, sk, next)
	remaining := l.cfg.MaxAttempts - next.Attempts
	return fmt.Sprintf("%d attempts remaining before temporary lockout.", remaining)
}

// Reset removes any recorded state for key.
func (l *Limiter) Reset(ctx context.Context, key string) {
	_ = l.store.Delete(ctx, StorageKey(key))
}

func lockoutMessage(remainingMs int64) string {
	return fmt.Sprintf("Too many failed attempts. Please try again in %d minutes.", ceilMinutes(remainingMs))
}

// ceilMinutes rounds remaining milliseconds up to whole minutes so that 1ms
// remaining still reads as 1 minute, never 0.
func ceilMinutes(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int((ms + 59999) / 60000)
}
