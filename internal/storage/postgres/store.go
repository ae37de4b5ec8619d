package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// Store 基于 GORM 的关系型存储实现，支持 PostgreSQL 与 MySQL
type Store struct {
	db   *gorm.DB
	pool *Client // 仅 PostgreSQL 使用
}

// NewStore 根据配置创建存储实例
func NewStore(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	switch cfg.Type {
	case "mysql":
		return NewStoreWithDialector(mysql.Open(cfg.DSN), cfg)
	case "postgres", "postgresql":
		client, err := NewClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		// GORM 复用 pgx 连接池
		sqlDB := stdlib.OpenDBFromPool(client.Pool())
		store, err := NewStoreWithDialector(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
		if err != nil {
			client.Close()
			return nil, err
		}
		store.pool = client
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s (supported: mysql, postgres)", cfg.Type)
	}
}

// NewStoreWithDialector 使用指定的 GORM dialector 创建存储实例
func NewStoreWithDialector(dialector gorm.Dialector, cfg *config.DatabaseConfig) (*Store, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &Store{db: db}

	if cfg.AutoMigrate {
		if err := store.migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return store, nil
}

// migrate 自动迁移数据库表结构
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.Staff{},
		&domain.Client{},
		&domain.Subscription{},
		&domain.PlanTemplate{},
		&domain.Location{},
		&domain.PlanCard{},
		&domain.Recipient{},
		&domain.PickupAgent{},
		&domain.MailItem{},
		&domain.Task{},
	)
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Health 检查数据库连接
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// translate 将 GORM 错误转换为存储层错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrAlreadyExists
	default:
		return err
	}
}

// affected 在更新未命中任何行时返回 ErrNotFound
//
// MySQL 需在 DSN 中开启 clientFoundRows=true，使 RowsAffected 返回匹配行数。
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ========== Staff Repository ==========

// GetActiveStaff 返回有效的工作人员
func (s *Store) GetActiveStaff(ctx context.Context, staffID string) (*domain.Staff, error) {
	var staff domain.Staff
	err := s.db.WithContext(ctx).Where("staff_id = ? AND active = ?", staffID, true).First(&staff).Error
	if err != nil {
		return nil, translate(err)
	}
	return &staff, nil
}

// SaveStaff 保存工作人员
func (s *Store) SaveStaff(ctx context.Context, staff *domain.Staff) error {
	return translate(s.db.WithContext(ctx).Save(staff).Error)
}

// ========== Client Repository ==========

// GetClient 根据 ID 获取客户
func (s *Store) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	var client domain.Client
	if err := s.db.WithContext(ctx).Where("id = ?", clientID).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// GetSubscription 根据 ID 获取订阅
func (s *Store) GetSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := s.db.WithContext(ctx).Where("id = ?", subscriptionID).First(&sub).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// ListSubscriptionsByClient 按创建时间倒序返回客户的订阅
func (s *Store) ListSubscriptionsByClient(ctx context.Context, clientID string) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC").Find(&subs).Error
	return subs, translate(err)
}

// ========== Catalog Repository ==========

// GetPlanTemplate 根据产品 ID 获取套餐模板
func (s *Store) GetPlanTemplate(ctx context.Context, productID string) (*domain.PlanTemplate, error) {
	var tpl domain.PlanTemplate
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).First(&tpl).Error; err != nil {
		return nil, translate(err)
	}
	return &tpl, nil
}

// ListActiveLocations 返回全部启用的门店
func (s *Store) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	var locs []domain.Location
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("location_id").Find(&locs).Error
	return locs, translate(err)
}
