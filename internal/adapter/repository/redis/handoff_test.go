package redis

import (
	"context"
	"testing"
	"time"

	"loanappl-backend/internal/domain/handoff"
	"loanappl-backend/internal/domain/loanappl"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*HandoffStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewHandoffStore(rdb), s
}

func TestHandoffStore_PutTakeOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	tok := &handoff.Token{
		ID:        "7c1f5a0e-1d1b-4c1e-9a57-3f2d6a0b9c11",
		PartyType: loanappl.PartyCustomer,
		ActorID:   "u-owner",
		Draft: &loanappl.Application{
			RequestedGrossAmount: decimal.NewFromInt(1000),
			RepaymentPeriods:     12,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, tok, time.Minute))

	got, err := store.Take(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, loanappl.PartyCustomer, got.PartyType)
	assert.Equal(t, "u-owner", got.ActorID)
	require.NotNil(t, got.Draft)
	assert.True(t, got.Draft.RequestedGrossAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 12, got.Draft.RepaymentPeriods)

	_, err = store.Take(ctx, tok.ID)
	assert.ErrorIs(t, err, handoff.ErrTokenNotFound)
}

func TestHandoffStore_Expires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	tok := &handoff.Token{ID: "expiring", ApplicationID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", PartyType: loanappl.PartyEmployee}
	require.NoError(t, store.Put(ctx, tok, 30*time.Second))

	mr.FastForward(31 * time.Second)

	_, err := store.Take(ctx, tok.ID)
	assert.ErrorIs(t, err, handoff.ErrTokenNotFound)
}

func TestHandoffStore_CorruptPayload(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, mr.Set(handoffKey("bad"), "{not json"))

	_, err := store.Take(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, handoff.ErrTokenNotFound)
}

func TestHandoffStore_PeekKeepsToken(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Peek(ctx, "missing")
	assert.ErrorIs(t, err, handoff.ErrTokenNotFound)

	tok := &handoff.Token{ID: "peeked", ApplicationID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", PartyType: loanappl.PartySupplier, ActorID: "u-owner"}
	require.NoError(t, store.Put(ctx, tok, time.Minute))

	for i := 0; i < 2; i++ {
		got, err := store.Peek(ctx, tok.ID)
		require.NoError(t, err)
		assert.Equal(t, tok.ApplicationID, got.ApplicationID)
	}
	got, err := store.Take(ctx, tok.ID)
	require.NoError(t, err)
	assert.Equal(t, loanappl.PartySupplier, got.PartyType)
}
