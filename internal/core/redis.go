// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/config"
)

// Redis holds the shared client used by the rate limiter and the health
// probes. Session state lives in the signed credential, not here, so
// callers must tolerate redis being down.
type Redis struct {
	Client *redis.Client
}

const redisProbeTimeout = 3 * time.Second

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	opts.ClientName = "pmp-exam-assistant"
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	r := &Redis{Client: redis.NewClient(opts)}

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close()
		return nil, err
	}

	return r, nil
}

// Ping probes the connection with a bounded deadline. Readiness checks call
// it on every request.
func (r *Redis) Ping(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, redisProbeTimeout)
	defer cancel()

	if err := r.Client.Ping(probeCtx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
