package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// idleLimiterTTL 是限流器闲置多久后被回收。
const idleLimiterTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按账号（无账号时按客户端 IP）做令牌桶限流。
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	onBlock  func()
	logger   *zap.Logger
	now      func() time.Time

	lastSweep time.Time
}

// NewRateLimiter 创建限流器，rps 或 burst 非正时不做限制。
func NewRateLimiter(rps float64, burst int, logger *zap.Logger, onBlock func()) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Limit(rps)
	if rps <= 0 || burst <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		onBlock:  onBlock,
		logger:   logger,
		now:      time.Now,
	}
}

// Allow 判断 key 当前是否允许通过。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	if now.Sub(rl.lastSweep) > idleLimiterTTL {
		for k, other := range rl.visitors {
			if now.Sub(other.lastSeen) > idleLimiterTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}
	return v.limiter.AllowN(now, 1)
}

// Middleware 返回 gin 限流中间件，需放在 AccountContext 之后。
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(AccountKey)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		if !rl.Allow(key) {
			if rl.onBlock != nil {
				rl.onBlock()
			}
			rl.logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("action", c.GetString(ActionKey)))
			abortWithError(c, http.StatusTooManyRequests, "Too many requests, please slow down")
			return
		}
		c.Next()
	}
}
