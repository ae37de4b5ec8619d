package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mailroom/backend/internal/domain"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

const activeLocationsKey = "locations:active"

// Cache 面向读多写少数据（工作人员、套餐目录、门店）的 Redis 缓存
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache 基于已连接的客户端创建缓存
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// ========== 工作人员缓存 ==========

// CacheStaff 缓存工作人员信息
func (c *Cache) CacheStaff(ctx context.Context, staff *domain.Staff) error {
	return c.setJSON(ctx, staffKey(staff.StaffID), staff)
}

// GetCachedStaff 获取缓存的工作人员信息
func (c *Cache) GetCachedStaff(ctx context.Context, staffID string) (*domain.Staff, error) {
	var staff domain.Staff
	if err := c.getJSON(ctx, staffKey(staffID), &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

// DeleteCachedStaff 删除缓存的工作人员信息
func (c *Cache) DeleteCachedStaff(ctx context.Context, staffID string) error {
	return c.client.Del(ctx, staffKey(staffID)).Err()
}

// ========== 套餐目录缓存 ==========

// CachePlanTemplate 缓存套餐模板
func (c *Cache) CachePlanTemplate(ctx context.Context, tpl *domain.PlanTemplate) error {
	return c.setJSON(ctx, planKey(tpl.ProductID), tpl)
}

// GetCachedPlanTemplate 获取缓存的套餐模板
func (c *Cache) GetCachedPlanTemplate(ctx context.Context, productID string) (*domain.PlanTemplate, error) {
	var tpl domain.PlanTemplate
	if err := c.getJSON(ctx, planKey(productID), &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// CacheLocations 缓存启用门店列表
func (c *Cache) CacheLocations(ctx context.Context, locations []domain.Location) error {
	return c.setJSON(ctx, activeLocationsKey, locations)
}

// GetCachedLocations 获取缓存的启用门店列表
func (c *Cache) GetCachedLocations(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	if err := c.getJSON(ctx, activeLocationsKey, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Ping 测试缓存连接
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, dst interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

func staffKey(id string) string { return fmt.Sprintf("staff:%s", id) }
func planKey(id string) string  { return fmt.Sprintf("plan:%s", id) }
