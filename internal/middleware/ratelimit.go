package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ecommerce-backend/internal/config"
)

// NewTokenBucket builds a Redis-backed token bucket limiter keyed by
// client IP and route.  It is applied to the /api/auth group to slow down
// credential stuffing and verification-mail abuse.  When disabled or when
// no Redis client is available the middleware is a pass-through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	// State per bucket lives in a Redis hash {tokens, last_refill_ms}; the
	// script refills lazily and consumes one token per request, all in one
	// atomic round trip.
	limiterScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local interval_ms = tonumber(ARGV[3])
        local ttl_seconds = tonumber(ARGV[4])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + intervals)
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, retry_after_ms }
    `)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.RealIP(), c.Path())

			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(vals) != 2 {
				// Redis trouble must not take the API down with it.
				return next(c)
			}

			if vals[0] != 1 {
				retryAfter := (time.Duration(vals[1]) * time.Millisecond).Round(time.Second)
				if retryAfter < time.Second {
					retryAfter = time.Second
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
