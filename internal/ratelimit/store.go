package ratelimit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// MemoryStore is a process-local Store. Suitable for single-instance
// deployments and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[key]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = st
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}

// SQLStore persists limiter state as JSONB rows keyed by the full storage key.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureTable creates the rate_limit_states table if it does not already exist.
func (s *SQLStore) EnsureTable(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS rate_limit_states (
		key varchar(128) PRIMARY KEY,
		state JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (*State, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, `SELECT state FROM rate_limit_states WHERE key=$1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rate_limit_states (key, state, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET state=EXCLUDED.state, updated_at=NOW()`
	_, err = s.db.ExecContext(ctx, q, key, raw)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rate_limit_states WHERE key=$1`, key)
	return err
}
