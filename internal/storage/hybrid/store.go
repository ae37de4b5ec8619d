package hybrid

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage/postgres"
	"mailroom/backend/internal/storage/redis"
)

// Store 混合存储实现：SQL 为权威数据源，Redis 缓存读多写少的记录
//
// 套餐卡、收件人、邮件等带计数或状态机的数据不做缓存，始终直接读写数据库。
type Store struct {
	*postgres.Store
	cache *redis.Cache
	log   *zap.Logger
}

// NewStore 组合数据库存储与 Redis 缓存
func NewStore(db *postgres.Store, cache *redis.Cache, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Store: db, cache: cache, log: log}
}

// GetActiveStaff 优先从缓存读取工作人员
func (s *Store) GetActiveStaff(ctx context.Context, staffID string) (*domain.Staff, error) {
	if staff, err := s.cache.GetCachedStaff(ctx, staffID); err == nil && staff.Active {
		return staff, nil
	}

	staff, err := s.Store.GetActiveStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheStaff(ctx, staff); err != nil {
		s.log.Warn("failed to cache staff", zap.String("staff_id", staffID), zap.Error(err))
	}
	return staff, nil
}

// SaveStaff 保存工作人员并使缓存失效
func (s *Store) SaveStaff(ctx context.Context, staff *domain.Staff) error {
	if err := s.Store.SaveStaff(ctx, staff); err != nil {
		return err
	}
	if err := s.cache.DeleteCachedStaff(ctx, staff.StaffID); err != nil {
		s.log.Warn("failed to invalidate staff cache", zap.String("staff_id", staff.StaffID), zap.Error(err))
	}
	return nil
}

// GetPlanTemplate 优先从缓存读取套餐模板
func (s *Store) GetPlanTemplate(ctx context.Context, productID string) (*domain.PlanTemplate, error) {
	if tpl, err := s.cache.GetCachedPlanTemplate(ctx, productID); err == nil {
		return tpl, nil
	}

	tpl, err := s.Store.GetPlanTemplate(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CachePlanTemplate(ctx, tpl); err != nil {
		s.log.Warn("failed to cache plan template", zap.String("product_id", productID), zap.Error(err))
	}
	return tpl, nil
}

// ListActiveLocations 优先从缓存读取门店列表
func (s *Store) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	if locs, err := s.cache.GetCachedLocations(ctx); err == nil {
		return locs, nil
	}

	locs, err := s.Store.ListActiveLocations(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.CacheLocations(ctx, locs); err != nil {
		s.log.Warn("failed to cache locations", zap.Error(err))
	}
	return locs, nil
}

// Health 同时检查数据库与 Redis
func (s *Store) Health() error {
	if err := s.Store.Health(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.cache.Ping(context.Background()); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
