package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// pendingLockTTL bounds how long a crashed handler can hold a request id.
	pendingLockTTL = 60 * time.Second
	maxClockSkew   = 10 * time.Minute
	storeTimeout   = 2 * time.Second
)

type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// IdempotencyMiddleware replays the stored response of a mutating request
// that repeats its Ax-Request-Id. Entries are keyed by method, route, actor
// id and request id, and hold the body fingerprint so a reused id with a
// different body is refused. Server errors are not stored, so the client may
// retry with the same id.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	store := replayStore{rdb: rdb, lockTTL: pendingLockTTL, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID := strings.TrimSpace(req.Header.Get(HeaderRequestID))
			if reqID == "" {
				return reject(c, http.StatusBadRequest, "missing "+HeaderRequestID)
			}
			if !validRequestID(reqID) {
				return reject(c, http.StatusBadRequest, "invalid "+HeaderRequestID+" format")
			}
			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return reject(c, http.StatusBadRequest, err.Error())
			}
			if !withinSkew(reqAt, nowUTC(), maxClockSkew) {
				return reject(c, http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}
			actorID := actorIDFor(c)
			if actorID == "" {
				return reject(c, http.StatusBadRequest, "missing "+HeaderActorID)
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return reject(c, http.StatusBadRequest, "unreadable body")
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(req.Method, c.Path(), actorID, reqID)
			entry := replayEntry{
				Fingerprint: fingerprint(body),
				RequestID:   reqID,
				RequestAt:   reqAt,
				CreatedAt:   nowUTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			ok, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				return replay(ctx, c, log, store, key, entry.Fingerprint)
			}

			w := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be gone once the handler returns
			bg, cancelBg := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelBg()
			if w.status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("idempotency lock not released", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.Status = w.status
			entry.ContentType = c.Response().Header().Get(echo.HeaderContentType)
			entry.Body = w.buf.Bytes()
			if err := store.commit(bg, key, entry); err != nil {
				log.Warn("idempotency response not stored", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

func replay(ctx context.Context, c echo.Context, log *zap.Logger, store replayStore, key, fp string) error {
	cur, err := store.load(ctx, key)
	if err != nil {
		log.Warn("idempotency entry unreadable", zap.String("key", key), zap.Error(err))
		return reject(c, http.StatusConflict, "request is already in progress")
	}
	if cur.Fingerprint != "" && cur.Fingerprint != fp {
		return reject(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if !cur.replayable() {
		return reject(c, http.StatusConflict, "request is already in progress")
	}
	ct := cur.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSONCharsetUTF8
	}
	c.Response().Header().Set(HeaderReplayed, "true")
	return c.Blob(cur.Status, ct, cur.Body)
}
