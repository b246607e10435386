package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"task-notifier/cache"
	"task-notifier/common"
)

type RateLimiter struct {
	RedisClient cache.RedisClientInterface
	Limit       int
	Window      time.Duration
}

func NewRateLimiter(redisClient cache.RedisClientInterface, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		RedisClient: redisClient,
		Limit:       limit,
		Window:      window,
	}
}

// RateLimitKey is the Redis key counting requests of userID in the current window.
func RateLimitKey(userID int) string {
	return fmt.Sprintf("ratelimit:user:%d", userID)
}

// Middleware counts requests per authenticated user. It must run after
// JWTMiddleware. Without a Redis client every request passes.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.RedisClient == nil {
			next.ServeHTTP(w, req)
			return
		}
		userID, ok := common.UserIDFromContext(req.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := req.Context()
		key := RateLimitKey(userID)

		count, err := r.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			http.Error(w, "Rate limit error", http.StatusInternalServerError)
			return
		}
		// The counter key must always carry a TTL.
		if count == 1 {
			if err := r.RedisClient.Expire(ctx, key, r.Window).Err(); err != nil {
				r.RedisClient.Del(ctx, key)
				http.Error(w, "Rate limit error", http.StatusInternalServerError)
				return
			}
		}

		ttl, err := r.RedisClient.TTL(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			http.Error(w, "Rate limit error", http.StatusInternalServerError)
			return
		}
		if ttl < 0 {
			ttl = r.Window
		}
		reset := time.Now().Add(ttl).Unix()

		remaining := r.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-Rate-Limit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-Rate-Limit-Reset", strconv.FormatInt(reset, 10))

		if int(count) > r.Limit {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}
