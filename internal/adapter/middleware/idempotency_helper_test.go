package middleware

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func Test_fingerprint(t *testing.T) {
	a := fingerprint([]byte(`{"field":"party","value":"CUST-1"}`))
	if len(a) != 64 {
		t.Fatalf("want 64 hex chars, got %d", len(a))
	}
	if a != fingerprint([]byte(`{"field":"party","value":"CUST-1"}`)) {
		t.Fatalf("fingerprint not stable")
	}
	if a == fingerprint([]byte(`{"field":"party","value":"CUST-2"}`)) {
		t.Fatalf("different bodies share a fingerprint")
	}
}

func Test_replayKey(t *testing.T) {
	reqID := strings.Repeat("a", 32)
	got := replayKey("PATCH", "/loan-applications/:application_id", "u-owner", reqID)
	want := "idemp:loanappl:patch:/loan-applications/:application_id:u-owner:" + reqID
	if got != want {
		t.Fatalf("replayKey = %q, want %q", got, want)
	}
}

func Test_validRequestID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", true},
		{strings.Repeat("a", 32), true},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88", true},
		{"", false},
		{strings.Repeat("A", 32), false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8", false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880", false},
		{strings.Repeat("z", 32), false},
		{"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", false},
		{"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", false},
	}
	for _, tc := range cases {
		if got := validRequestID(tc.id); got != tc.want {
			t.Errorf("validRequestID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func Test_parseRequestAt(t *testing.T) {
	sec := time.Now().UTC().Unix()
	ms := time.Now().UTC().UnixMilli()
	cases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"epoch seconds", strconv.FormatInt(sec, 10), time.Unix(sec, 0).UTC(), false},
		{"epoch millis", strconv.FormatInt(ms, 10), time.UnixMilli(ms).UTC(), false},
		{"rfc3339 offset", "2025-09-05T10:00:00+07:00", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC), false},
		{"rfc3339 zulu", "2025-09-05T03:00:00Z", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC), false},
		{"rfc3339 nano", "2025-09-05T03:00:00.5Z", time.Date(2025, 9, 5, 3, 0, 0, 5e8, time.UTC), false},
		{"missing", "", time.Time{}, true},
		{"garbage", "not-a-time", time.Time{}, true},
		{"no zone", "2025-09-05T10:00:00", time.Time{}, true},
		{"trailing junk", "1736123456abc", time.Time{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseRequestAt(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error for %q, got %v", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRequestAt(%q): %v", tc.raw, err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("got %v, want %v in UTC", got, tc.want)
			}
		})
	}
}

func Test_withinSkew(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !withinSkew(now.Add(-maxClockSkew), now, maxClockSkew) {
		t.Fatalf("edge of window must be accepted")
	}
	if withinSkew(now.Add(maxClockSkew+time.Second), now, maxClockSkew) {
		t.Fatalf("future beyond window must be rejected")
	}
	if withinSkew(now.Add(-maxClockSkew-time.Second), now, maxClockSkew) {
		t.Fatalf("past beyond window must be rejected")
	}
}

func Test_replayStore_Lifecycle(t *testing.T) {
	_, rdb := newMiniRedis(t)
	ctx := context.Background()
	store := replayStore{rdb: rdb, lockTTL: pendingLockTTL, ttl: 5 * time.Second}
	key := replayKey("POST", "/loan-applications", "u-owner", strings.Repeat("a", 32))
	entry := replayEntry{
		Fingerprint: fingerprint([]byte(`{}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAt:   nowUTC(),
		CreatedAt:   nowUTC(),
	}

	ok, err := store.reserve(ctx, key, entry)
	if err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > pendingLockTTL {
		t.Fatalf("pending TTL = %v", ttl)
	}
	if ok, err = store.reserve(ctx, key, entry); err != nil || ok {
		t.Fatalf("second reserve: ok=%v err=%v, want false", ok, err)
	}
	got, err := store.load(ctx, key)
	if err != nil {
		t.Fatalf("load pending: %v", err)
	}
	if !got.Pending || got.replayable() || got.Fingerprint != entry.Fingerprint {
		t.Fatalf("pending entry = %+v", got)
	}

	entry.Status = 201
	entry.ContentType = "application/json"
	entry.Body = []byte(`{"ok":true}`)
	if err := store.commit(ctx, key, entry); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL = %v", ttl)
	}
	got, err = store.load(ctx, key)
	if err != nil {
		t.Fatalf("load final: %v", err)
	}
	if !got.replayable() || got.Status != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("final entry = %+v", got)
	}

	if err := store.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := store.load(ctx, key); err != redis.Nil {
		t.Fatalf("after release want redis.Nil, got %v", err)
	}
	if err := store.release(ctx, key); err != nil {
		t.Fatalf("release of missing key: %v", err)
	}
}

func Test_replayStore_CorruptEntry(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	store := replayStore{rdb: rdb, lockTTL: pendingLockTTL, ttl: time.Minute}
	if err := mr.Set("idemp:loanappl:broken", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.load(context.Background(), "idemp:loanappl:broken"); err == nil {
		t.Fatalf("want decode error")
	}
}
