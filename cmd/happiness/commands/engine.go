package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/happiness/internal/anomaly"
	"github.com/wonny/happiness/internal/api/stream"
	"github.com/wonny/happiness/internal/dashboard"
	"github.com/wonny/happiness/internal/generator"
	"github.com/wonny/happiness/internal/metrics"
	"github.com/wonny/happiness/internal/reference"
	"github.com/wonny/happiness/internal/refresh"
	"github.com/wonny/happiness/internal/scoring"
	"github.com/wonny/happiness/internal/sentiment"
	"github.com/wonny/happiness/pkg/config"
	"github.com/wonny/happiness/pkg/logger"
	"github.com/wonny/happiness/pkg/redis"
)

// engine is the fully wired refresh pipeline shared by serve, snapshot and scheduler
type engine struct {
	cfg       *config.Config
	log       *logger.Logger
	dataset   *reference.Dataset
	builder   *dashboard.Builder
	latest    *dashboard.Latest
	metrics   *metrics.Metrics // nil when METRICS_ENABLED=false
	hub       *stream.Hub      // nil for one-shot commands
	redis     *redis.Client
	redisPub  *dashboard.RedisPublisher // nil when Redis is disabled
	scheduler *refresh.Scheduler

	closeOnce sync.Once
}

// newEngine wires every component from config. withStream adds the websocket
// hub to the publisher fanout; only the long-running server needs it.
func newEngine(ctx context.Context, cfg *config.Config, log *logger.Logger, withStream bool) (*engine, error) {
	params := cfg.EngineParams()

	// 1. Reference data
	dataset, err := reference.Load(cfg.ReferenceFile, time.Now())
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"source": dataset.Source,
		"hash":   dataset.Hash[:12],
		"brand":  dataset.Data.Brand,
	}).Info("Reference data loaded")

	// 2. Core
	store := sentiment.NewStore()
	scorer := scoring.NewScorer(params.Weights)
	detector := anomaly.NewDetector(anomaly.RulesFromParams(params), scorer, log)
	builder := dashboard.NewBuilder(store, dataset.Data, scorer, detector, log)

	e := &engine{
		cfg:     cfg,
		log:     log,
		dataset: dataset,
		builder: builder,
		latest:  &dashboard.Latest{},
	}

	// 3. Metrics
	var onClients func(int)
	if cfg.MetricsEnabled {
		e.metrics = metrics.New()
		onClients = func(n int) { e.metrics.StreamClients.Set(float64(n)) }
	}

	publishers := dashboard.Fanout{e.latest}

	// 4. Stream hub
	if withStream {
		e.hub = stream.NewHub(log, e.latest.Get, onClients)
		publishers = append(publishers, e.hub)
	}

	// 5. Redis (optional)
	e.redis, err = redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	var limiter refresh.Limiter = refresh.NewLocalLimiter(cfg.Engine.ManualRefreshPerMinute)

	if e.redis.Enabled() {
		cache := redis.NewCache(e.redis, cfg.Redis.Prefix)
		e.redisPub = dashboard.NewRedisPublisher(cache, cfg.Redis.TTL, log)
		publishers = append(publishers, e.redisPub)
		limiter = redis.NewRateLimiter(e.redis, cfg.Redis.Prefix, redis.RefreshRateLimit(cfg.Engine.ManualRefreshPerMinute))
		log.Info("Redis publishing enabled")
	}
	if e.metrics != nil {
		publishers = append(publishers, e.metrics)
	}

	// 6. Scheduler + refresh job
	opts := []refresh.Option{refresh.WithLimiter(limiter)}
	if e.metrics != nil {
		opts = append(opts, refresh.WithObserver(e.metrics))
	}
	e.scheduler = refresh.New(log, opts...)

	job := refresh.NewWindowJob(generator.New(), store, builder, publishers, params, log)
	if err := e.scheduler.AddJob(job); err != nil {
		_ = e.redis.Close()
		return nil, err
	}

	return e, nil
}

// refreshOnce runs the window job synchronously
func (e *engine) refreshOnce(ctx context.Context) (refresh.JobResult, error) {
	result, _, err := e.scheduler.RunNow(ctx, refresh.WindowJobName)
	if err != nil {
		return result, err
	}
	if !result.Success {
		return result, fmt.Errorf("refresh failed: %s", result.Error)
	}
	return result, nil
}

// Close releases the scheduler and Redis; safe to call twice
func (e *engine) Close() {
	e.closeOnce.Do(func() {
		e.scheduler.Stop()
		if err := e.redis.Close(); err != nil {
			e.log.WithError(err).Warn("Redis close failed")
		}
	})
}
