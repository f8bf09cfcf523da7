package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobhunter/internal/config"
)

// Redis backs the submission rate limiter. The INCR+EXPIRE pair gives
// the atomic per-email counter the limiter needs without any locking.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(cfg config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: strings.TrimSpace(cfg.Password),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("nil redis")
	}
	return r.client.Ping(ctx).Err()
}

// Allow counts one attempt for the key inside a rolling window and
// reports whether it stayed within limit. The first attempt opens the
// window; the counter expires with it.
func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r == nil || r.client == nil {
		return false, fmt.Errorf("nil redis")
	}

	redisKey := "ratelimit:" + strings.ToLower(strings.TrimSpace(key))
	n, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			r.logger.Warn("rate limit expire failed", zap.String("key", redisKey), zap.Error(err))
		}
	}
	if n > int64(limit) {
		r.logger.Info("rate limit exceeded",
			zap.String("key", redisKey),
			zap.Int64("count", n),
			zap.Int("limit", limit))
		return false, nil
	}
	return true, nil
}
