package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/config"
	"github.com/upb/llm-datagen/internal/localgen"
	"github.com/upb/llm-datagen/internal/observability"
	"github.com/upb/llm-datagen/middleware"
	"github.com/upb/llm-datagen/repositories"
	"github.com/upb/llm-datagen/repositories/postgres"
	"github.com/upb/llm-datagen/services/breaker"
	"github.com/upb/llm-datagen/services/generator"
	"github.com/upb/llm-datagen/services/orchestrator"
	"github.com/upb/llm-datagen/services/ratelimit"
	"github.com/upb/llm-datagen/services/templates"
	"github.com/upb/llm-datagen/services/usage"
)

// usageStopTimeout bounds how long shutdown waits for queued usage records
const usageStopTimeout = 10 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Redis   *redis.Client
	Logger  *zap.Logger
	Metrics observability.Metrics

	// MetricsHandler serves /metrics; nil when metrics are disabled
	MetricsHandler http.Handler

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Templates repositories.TemplateRepository
	UsageLogs repositories.UsageRepository

	// Orchestration
	RateLimiter  *ratelimit.RateLimitService
	Orchestrator *orchestrator.Service

	// Usage accounting
	Usage    *usage.Service
	Counters *usage.Counters

	// Generation
	Resolver  *templates.Resolver
	Generator *generator.Service

	// Auth
	APIKeyMiddleware *middleware.APIKeyMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics(cfg)

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		deps.closeQuietly()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize Redis
	if err := deps.initRedis(ctx, cfg); err != nil {
		deps.closeQuietly()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize usage pipeline
	if err := deps.initUsage(cfg); err != nil {
		deps.closeQuietly()
		return nil, fmt.Errorf("failed to initialize usage: %w", err)
	}

	// Initialize provider orchestration
	if err := deps.initOrchestrator(ctx, cfg); err != nil {
		deps.closeQuietly()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	deps.initGenerator(cfg)

	deps.APIKeyMiddleware = middleware.NewAPIKeyMiddleware(cfg.Usage.AdminAPIKey, logger)
	if cfg.Usage.AdminAPIKey == "" {
		logger.Warn("ADMIN_API_KEY not set, admin endpoints disabled")
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NopMetrics{}
		return
	}
	prom := observability.NewPrometheusMetrics()
	d.Metrics = prom
	d.MetricsHandler = prom.Handler()
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Templates = repos.Templates
	d.UsageLogs = repos.UsageLogs

	d.Logger.Info("repositories initialized")
}

// initRedis connects the client shared by the daily quota and usage counters
func (d *Dependencies) initRedis(ctx context.Context, cfg *config.Config) error {
	opts, err := redisOptions(cfg.Redis)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	d.Redis = client
	d.Logger.Info("redis connection established",
		zap.String("connection", cfg.Redis.LogString()))
	return nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

// initUsage starts the async usage-log writer and the daily counters
func (d *Dependencies) initUsage(cfg *config.Config) error {
	loc, err := time.LoadLocation(cfg.Usage.StatsZone)
	if err != nil {
		return fmt.Errorf("invalid usage stats timezone: %w", err)
	}
	d.Counters = usage.NewCounters(d.Redis, loc)

	d.Usage = usage.NewService(d.UsageLogs, d.Logger, usage.Config{
		BufferSize:  cfg.Usage.BufferSize,
		WorkerCount: cfg.Usage.WorkerCount,
	})
	return d.Usage.Start()
}

// initOrchestrator builds the provider fallback chain behind the shared rate limiter
func (d *Dependencies) initOrchestrator(ctx context.Context, cfg *config.Config) error {
	strategies, err := newProviderSet(ctx, cfg.Providers, cfg.LLM.ProviderOrder)
	if err != nil {
		return err
	}

	breakerCfg := breaker.Config{
		ErrorThreshold: cfg.LLM.BreakerErrorThreshold,
		MinRequests:    cfg.LLM.BreakerMinRequests,
		Window:         cfg.LLM.BreakerWindow,
		Cooldown:       cfg.LLM.BreakerCooldown,
		CallTimeout:    cfg.LLM.CallTimeout,
	}
	guards := make([]orchestrator.Guard, 0, len(strategies))
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		guards = append(guards, breaker.New(s, breakerCfg, d.Logger, d.Metrics))
		names = append(names, s.Name())
	}

	quota := ratelimit.NewRedisQuotaStore(d.Redis, ratelimit.DefaultQuotaKey, cfg.LLM.RPDLimit, 24*time.Hour)
	d.RateLimiter = ratelimit.NewRateLimitService(quota, ratelimit.Config{
		ShortLimit:  cfg.LLM.RPMLimit,
		ShortWindow: time.Minute,
		LongLimit:   cfg.LLM.RPDLimit,
		LongWindow:  24 * time.Hour,
	}, d.Logger, d.Metrics)

	orch, err := orchestrator.New(guards, d.RateLimiter, d.Usage, d.Logger, d.Metrics)
	if err != nil {
		return err
	}
	d.Orchestrator = orch

	d.Logger.Info("provider chain ready", zap.Strings("order", names))
	return nil
}

// initGenerator wires the local registry, template resolver and planner
func (d *Dependencies) initGenerator(cfg *config.Config) {
	registry := localgen.NewRegistry(d.Orchestrator, cfg.Generator.RowConcurrency)
	d.Resolver = templates.NewResolver(d.Templates, d.Logger)
	d.Generator = generator.NewService(
		registry,
		d.Orchestrator,
		d.Resolver,
		d.Counters,
		d.Logger,
		d.Metrics,
		generator.Config{
			MaxRows:        cfg.Generator.MaxRows,
			RowConcurrency: cfg.Generator.RowConcurrency,
		},
	)
}

func (d *Dependencies) closeQuietly() {
	if err := d.Close(context.Background()); err != nil {
		d.Logger.Warn("cleanup after failed startup", zap.Error(err))
	}
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Drain queued usage records before the database goes away
	if d.Usage != nil {
		timeout := usageStopTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Usage.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop usage service: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
