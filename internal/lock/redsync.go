package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// 分布式锁参数
const (
	DefaultExpiry = 10 * time.Second
	DefaultTries  = 32
)

// Distributed 基于 redsync 的分布式锁，多实例部署时使用。
type Distributed struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
	log    *zap.Logger
}

// NewDistributed 创建 redsync 锁。
func NewDistributed(rdb *goredislib.Client, log *zap.Logger) *Distributed {
	if log == nil {
		log = zap.NewNop()
	}
	pool := goredis.NewPool(rdb)
	return &Distributed{
		rs:     redsync.New(pool),
		expiry: DefaultExpiry,
		tries:  DefaultTries,
		log:    log,
	}
}

// Lock 获取指定键的分布式锁。
func (d *Distributed) Lock(ctx context.Context, key string) (func(), error) {
	mutex := d.rs.NewMutex(
		key,
		redsync.WithExpiry(d.expiry),
		redsync.WithTries(d.tries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {
		// 解锁失败时依赖过期时间释放
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			d.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
