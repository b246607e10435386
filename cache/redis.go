package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrDisabled is returned by reads when no Redis client is configured.
var ErrDisabled = errors.New("cache disabled")

var RedisClient RedisClientInterface

type RedisClientInterface interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Decr(ctx context.Context, key string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

func InitRedis(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return err
	}
	RedisClient = client
	return nil
}

// BundleKey caches the login summary bundle of a user.
func BundleKey(userID int) string {
	return fmt.Sprintf("login_summary:user:%d", userID)
}

// AnnouncementKey marks an announcement as dismissed by a user.
func AnnouncementKey(userID int, announcementID string) string {
	return fmt.Sprintf("announcement:%s:user:%d", announcementID, userID)
}

// Get returns redis.Nil on a miss and ErrDisabled without a client.
func Get(ctx context.Context, key string) (string, error) {
	if RedisClient == nil {
		return "", ErrDisabled
	}
	return RedisClient.Get(ctx, key).Result()
}

func Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(ctx, key, value, ttl).Err()
}

func Delete(ctx context.Context, keys ...string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, keys...).Err()
}

// IsMiss reports whether err means the key was absent or caching is off.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil) || errors.Is(err, ErrDisabled)
}
