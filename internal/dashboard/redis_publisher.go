package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/happiness/internal/contracts"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/logger"
	"github.com/wonny/happiness/pkg/redis"
)

// RedisPublisher writes the published dashboard to Redis so other readers of
// the feed can serve it without recomputing
type RedisPublisher struct {
	cache *redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewRedisPublisher creates a Redis-backed publisher
func NewRedisPublisher(cache *redis.Cache, ttl time.Duration, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		cache: cache,
		ttl:   ttl,
		log:   log.Component("dashboard.redis"),
	}
}

// Publish stores the dashboard under the 30d key and records its version
func (p *RedisPublisher) Publish(ctx context.Context, d *contracts.Dashboard) error {
	if err := p.cache.Set(ctx, redis.DashboardKey(string(sentiment.Range30d)), d, p.ttl); err != nil {
		return fmt.Errorf("publish dashboard to redis: %w", err)
	}

	if err := p.cache.Set(ctx, redis.DashboardVersionKey(), d.Version, p.ttl); err != nil {
		return fmt.Errorf("publish dashboard version to redis: %w", err)
	}

	p.log.WithField("version", d.Version).Debug("Published dashboard to redis")
	return nil
}

// Load reads the last published dashboard back
func (p *RedisPublisher) Load(ctx context.Context) (*contracts.Dashboard, bool, error) {
	var d contracts.Dashboard
	found, err := p.cache.Get(ctx, redis.DashboardKey(string(sentiment.Range30d)), &d)
	if err != nil || !found {
		return nil, found, err
	}
	return &d, true, nil
}
