package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"mailroom/backend/internal/storage"
)

// Pinger 是可选的依赖探测，例如 Redis 或消息队列连接。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
	extras map[string]Pinger
}

// NewHealthChecker 创建健康检查器，extras 中的依赖只参与就绪检查。
func NewHealthChecker(store storage.Store, logger *zap.Logger, extras map[string]Pinger) *HealthChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
		extras: extras,
	}

	hc.addChecks()
	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks() {
	hc.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))

	hc.health.AddReadinessCheck("store", healthcheck.Timeout(func() error {
		return hc.store.Health()
	}, 3*time.Second))

	for name, pinger := range hc.extras {
		pinger := pinger
		hc.health.AddReadinessCheck(name, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return pinger.Ping(ctx)
		})
	}
}

// LiveHandler 返回存活检查处理器
func (hc *HealthChecker) LiveHandler() http.HandlerFunc {
	return hc.health.LiveEndpoint
}

// ReadyHandler 返回就绪检查处理器
func (hc *HealthChecker) ReadyHandler() http.HandlerFunc {
	return hc.health.ReadyEndpoint
}

// CheckHealth 执行健康检查，返回各依赖的状态
func (hc *HealthChecker) CheckHealth() map[string]string {
	results := make(map[string]string)

	if err := hc.store.Health(); err != nil {
		hc.logger.Warn("store health check failed", zap.Error(err))
		results["store"] = fmt.Sprintf("ERROR: %v", err)
	} else {
		results["store"] = "OK"
	}

	for name, pinger := range hc.extras {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := pinger.Ping(ctx)
		cancel()
		if err != nil {
			hc.logger.Warn("dependency health check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = fmt.Sprintf("ERROR: %v", err)
		} else {
			results[name] = "OK"
		}
	}

	results["timestamp"] = time.Now().Format(time.RFC3339)
	return results
}
