package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/health"
	"mailroom/backend/internal/lock"
	"mailroom/backend/internal/logger"
	"mailroom/backend/internal/middleware"
	"mailroom/backend/internal/monitoring"
	"mailroom/backend/internal/service"
	"mailroom/backend/internal/storage"
	"mailroom/backend/internal/storage/hybrid"
	"mailroom/backend/internal/storage/memory"
	"mailroom/backend/internal/storage/postgres"
	"mailroom/backend/internal/storage/redis"
	httptransport "mailroom/backend/internal/transport/http"
)

const version = "1.0.0"

// main 启动邮件收发室 HTTP 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting mailroom server",
		zap.String("version", version),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化 Redis（缓存与分布式锁共用）
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// 初始化存储层
	store, err := initializeStorage(ctx, cfg, redisClient, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("storage close warning", zap.Error(err))
		}
	}()

	// 多实例部署时容量检查需要跨进程互斥
	var locker lock.Locker = lock.NewLocal()
	if redisClient != nil {
		locker = lock.NewDistributed(redisClient.Client(), log)
		log.Info("using distributed locks")
	}

	// 初始化事件发布
	var publisher events.Publisher = events.Nop{Log: log}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("failed to connect to rabbitmq, events will only be logged", zap.Error(err))
		} else {
			publisher = rabbit
		}
	}
	defer publisher.Close()

	metrics := monitoring.NewMetrics()

	extras := map[string]health.Pinger{}
	if redisClient != nil {
		extras["redis"] = redisClient
	}
	healthChecker := health.NewHealthChecker(store, log, extras)

	services := service.New(service.Deps{
		Store:      store,
		Locker:     locker,
		Events:     publisher,
		Metrics:    metrics,
		Billing:    cfg.Billing,
		Onboarding: cfg.Onboarding,
		Logger:     log,
	})

	// 创建默认工作人员（仅用于开发测试）
	if cfg.Log.Development {
		createDefaultStaff(ctx, store, cfg.Onboarding.DefaultLocation, log)
	}

	limiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		log,
		metrics.RecordRateLimitBlock,
	)

	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:   cfg,
		Services: services,
		Metrics:  metrics,
		Health:   healthChecker,
		Limiter:  limiter,
		Logger:   log,
	})

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", zap.Error(err))
		return
	}

	log.Info("server exited cleanly")
}

// initializeStorage 根据配置选择存储实现
//
// 未配置数据库时使用内存存储；配置数据库且启用 Redis 时使用混合存储。
func initializeStorage(ctx context.Context, cfg *config.Config, redisClient *redis.Client, log *zap.Logger) (storage.Store, error) {
	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		log.Info("using memory storage (development mode)")
		return memory.NewStore(), nil
	}

	log.Info("initializing database storage", zap.String("database_type", cfg.Database.Type))
	db, err := postgres.NewStore(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	if redisClient == nil {
		log.Info("database storage initialized", zap.String("database_type", cfg.Database.Type))
		return db, nil
	}

	cache := redis.NewCache(redisClient.Client(), cfg.Redis.CacheTTL)
	log.Info("hybrid storage initialized",
		zap.String("database_type", cfg.Database.Type),
		zap.String("redis_address", cfg.Redis.Address),
		zap.Duration("cache_ttl", cfg.Redis.CacheTTL),
	)
	return hybrid.NewStore(db, cache, log), nil
}

// createDefaultStaff 创建默认工作人员（仅用于开发测试）
func createDefaultStaff(ctx context.Context, store storage.Store, locationID string, log *zap.Logger) {
	const staffID = "STF001"

	if _, err := store.GetActiveStaff(ctx, staffID); err == nil {
		log.Info("default staff already exists, skipping", zap.String("staff_id", staffID))
		return
	}

	staff := &domain.Staff{
		StaffID:           staffID,
		Name:              "Front Desk",
		Email:             "frontdesk@mailroom.local",
		Role:              "admin",
		DefaultLocationID: locationID,
		Pin:               "0000",
		Active:            true,
		CreatedAt:         time.Now().UTC(),
	}
	if err := store.SaveStaff(ctx, staff); err != nil {
		log.Error("failed to create default staff", zap.Error(err))
		return
	}

	log.Warn("default staff created (development only)",
		zap.String("staff_id", staffID),
		zap.String("location_id", locationID),
	)
}
