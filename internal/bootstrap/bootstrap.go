// Package bootstrap wires the shift pipeline from configuration. Both the
// HTTP server and the backfill command use it.
package bootstrap

import (
	"context"
	"time"

	"backoffice-backend/internal/analysis"
	"backoffice-backend/internal/cache"
	"backoffice-backend/internal/config"
	"backoffice-backend/internal/loyverse"
	"backoffice-backend/internal/pipeline"
	"backoffice-backend/internal/reconcile"
	"backoffice-backend/internal/shift"
	"backoffice-backend/internal/store"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Location  *time.Location
	Store     *store.GormStore
	Engine    *reconcile.Engine
	Cache     cache.SummaryCache
	Processor *pipeline.Processor
	Redis     *redis.Client
}

// Build assembles the pipeline. Redis and AI analysis are optional and are
// skipped when not configured or, for Redis, not reachable.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Deps, error) {
	log := config.GetLogger()

	loc, err := shift.LoadLocation(cfg.ShiftTimezone)
	if err != nil {
		return nil, err
	}

	d := &Deps{
		Location: loc,
		Store:    store.New(db),
		Engine:   reconcile.New(decimal.NewFromFloat(cfg.ReconcileTolerance)),
		Cache:    cache.NoopSummaryCache{},
	}

	source := loyverse.NewClient(loyverseConfig(cfg, log))

	opts := []pipeline.Option{
		pipeline.WithLocation(loc),
		pipeline.WithPageDelay(time.Duration(cfg.LoyversePageDelayMs) * time.Millisecond),
		pipeline.WithReconcileEngine(d.Engine),
		pipeline.WithLogger(log),
	}

	if cfg.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			config.LogError(log, "bootstrap", "Build", "redis ping, continuing without cache and lock", cfg.RedisAddress, err)
			_ = client.Close()
		} else {
			d.Redis = client
			redisCache := cache.NewRedisSummaryCache(client, cache.DefaultTTL)
			d.Cache = redisCache
			opts = append(opts,
				pipeline.WithCache(redisCache),
				pipeline.WithLocker(pipeline.NewRedisLocker(redislock.New(client))),
			)
		}
	}

	if ai := analysis.NewClient(analysis.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
	}); ai != nil {
		opts = append(opts, pipeline.WithAnalyzer(ai))
	}

	d.Processor = pipeline.NewProcessor(source, d.Store, opts...)
	return d, nil
}

func loyverseConfig(cfg *config.Config, log logrus.FieldLogger) loyverse.Config {
	return loyverse.Config{
		BaseURL:     cfg.LoyverseBaseURL,
		AccessToken: cfg.LoyverseAccessToken,
		StoreID:     cfg.LoyverseStoreID,
		PageSize:    cfg.LoyversePageSize,
		MinorUnits:  cfg.LoyverseMinorUnits,
		MaxRetries:  cfg.LoyverseMaxRetries,
		RetryDelay:  time.Duration(cfg.LoyverseRetryDelayMs) * time.Millisecond,
		Logger:      log,
	}
}

func (d *Deps) Close() error {
	if d.Redis != nil {
		return d.Redis.Close()
	}
	return nil
}
