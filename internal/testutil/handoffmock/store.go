package handoffmock

import (
	"context"
	"sync"
	"time"

	"loanappl-backend/internal/domain/handoff"
)

var _ handoff.Store = (*Store)(nil)

// Store keeps tokens in memory. PutFn / PeekFn / TakeFn override the defaults.
type Store struct {
	PutFn  func(ctx context.Context, t *handoff.Token, ttl time.Duration) error
	PeekFn func(ctx context.Context, id string) (*handoff.Token, error)
	TakeFn func(ctx context.Context, id string) (*handoff.Token, error)

	mu     sync.Mutex
	tokens map[string]handoff.Token
}

func (m *Store) Put(ctx context.Context, t *handoff.Token, ttl time.Duration) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, t, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[string]handoff.Token{}
	}
	m.tokens[t.ID] = *t
	return nil
}

func (m *Store) Peek(ctx context.Context, id string) (*handoff.Token, error) {
	if m.PeekFn != nil {
		return m.PeekFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, handoff.ErrTokenNotFound
	}
	return &t, nil
}

func (m *Store) Take(ctx context.Context, id string) (*handoff.Token, error) {
	if m.TakeFn != nil {
		return m.TakeFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return nil, handoff.ErrTokenNotFound
	}
	delete(m.tokens, id)
	return &t, nil
}

// Len reports how many tokens are still unconsumed.
func (m *Store) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
