package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ecommerce-backend/internal/config"
)

// cachedResponse is the Redis payload: status, headers and body of one
// successful response.  Body is raw bytes so the replay is byte-identical
// to the original.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// captureWriter tees the response body into a buffer while writing it to
// the client, up to limit bytes.  Oversized responses are passed through
// uncached.
type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	overflow bool
	limit    int
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// NewResponseCache caches successful GET responses in Redis, keyed by
// route and query string.  It is meant for the public, unauthenticated
// catalog reads where every caller sees the same payload; never mount it
// on a guarded route.  When disabled or without a Redis client it is a
// pass-through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil {
					replay(c, cached)
					return nil
				}
			}

			w := &captureWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only complete 200s are worth replaying.
			if w.status == http.StatusOK && !w.overflow {
				payload, err := json.Marshal(cachedResponse{
					Status: w.status,
					Header: cloneHeader(c.Response().Header()),
					Body:   w.buf.Bytes(),
				})
				if err == nil {
					// Detached context: the response is already on the wire.
					_ = rdb.Set(context.Background(), key, payload, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

// cacheKey hashes route and query so arbitrary client input never lands
// in the key.
func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

func replay(c echo.Context, cached cachedResponse) {
	h := c.Response().Header()
	for k, vals := range cached.Header {
		if k == "Content-Length" || k == "X-Cache" {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cached.Status)
	_, _ = c.Response().Write(cached.Body)
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vals := range h {
		if k == "X-Cache" {
			continue
		}
		out[k] = append([]string(nil), vals...)
	}
	return out
}
