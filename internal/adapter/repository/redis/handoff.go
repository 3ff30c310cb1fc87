package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loanappl-backend/internal/domain/handoff"

	goredis "github.com/redis/go-redis/v9"
)

const handoffKeyPrefix = "handoff:party:"

type HandoffStore struct{ rdb *goredis.Client }

func NewHandoffStore(rdb *goredis.Client) *HandoffStore { return &HandoffStore{rdb: rdb} }

func handoffKey(id string) string { return handoffKeyPrefix + id }

func (s *HandoffStore) Put(ctx context.Context, t *handoff.Token, ttl time.Duration) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode handoff token: %w", err)
	}
	return s.rdb.Set(ctx, handoffKey(t.ID), payload, ttl).Err()
}

func (s *HandoffStore) Peek(ctx context.Context, id string) (*handoff.Token, error) {
	return decodeToken(s.rdb.Get(ctx, handoffKey(id)).Bytes())
}

// Take uses GETDEL so two concurrent consumers cannot both get the token.
func (s *HandoffStore) Take(ctx context.Context, id string) (*handoff.Token, error) {
	return decodeToken(s.rdb.GetDel(ctx, handoffKey(id)).Bytes())
}

func decodeToken(raw []byte, err error) (*handoff.Token, error) {
	if errors.Is(err, goredis.Nil) {
		return nil, handoff.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	var t handoff.Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode handoff token: %w", err)
	}
	return &t, nil
}
