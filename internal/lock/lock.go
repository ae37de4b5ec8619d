// Package lock 为套餐卡、客户等业务键提供互斥，保证"检查容量后写入"不会被并发请求穿插。
package lock

import (
	"context"
	"sync"
)

// Locker 按业务键加锁，返回的 unlock 必须调用且只调用一次。
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// PlanCardKey 返回套餐卡容量锁的键。
func PlanCardKey(planCardID string) string { return "lock:plan_card:" + planCardID }

// ClientAgentsKey 返回客户代领人容量锁的键。
func ClientAgentsKey(clientID string) string { return "lock:client_agents:" + clientID }

// Local 是进程内的按键互斥锁，适用于单实例部署和测试。
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal 创建进程内锁。
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// Lock 获取指定键的锁，ctx 取消时放弃等待。
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
