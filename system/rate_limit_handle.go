package system

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"

	"task-notifier/cache"
	"task-notifier/common"
	"task-notifier/middleware"
	"task-notifier/web"
)

type RateLimitStatus struct {
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"` // seconds until reset
}

// RateLimitStatusHandler reports the caller's remaining request budget.
func RateLimitStatusHandler(redisClient cache.RedisClientInterface, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := common.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if redisClient == nil {
			web.RenderJSON(w, http.StatusOK, RateLimitStatus{Remaining: limit})
			return
		}

		ctx := r.Context()
		key := middleware.RateLimitKey(userID)

		count := 0
		countVal, err := redisClient.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			http.Error(w, "Failed to read rate limit", http.StatusInternalServerError)
			return
		}
		if err == nil {
			count, _ = strconv.Atoi(countVal)
		}

		ttl, err := redisClient.TTL(ctx, key).Result()
		if err != nil {
			http.Error(w, "Failed to read TTL", http.StatusInternalServerError)
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		reset := int64(ttl.Seconds())
		if reset < 0 {
			reset = 0
		}

		web.RenderJSON(w, http.StatusOK, RateLimitStatus{
			Remaining: remaining,
			Reset:     reset,
		})
	}
}
