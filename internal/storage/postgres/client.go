package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"mailroom/backend/internal/config"
)

const (
	applicationName     = "mailroom"
	defaultMaxConns     = 25
	defaultConnLifetime = 5 * time.Minute
	connIdleTime        = 30 * time.Minute
	connectTimeout      = 10 * time.Second
)

// Client 持有 GORM 复用的 pgx 连接池
type Client struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// NewClient 按数据库配置建立连接池，连通后才返回
func NewClient(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	poolConfig, err := poolSettings(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to PostgreSQL",
		zap.String("database", poolConfig.ConnConfig.Database),
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
	)
	return &Client{pool: pool, log: log}, nil
}

// poolSettings 把数据库配置换算为 pgx 连接池参数。
//
// 最大连接数与连接寿命未设置时取默认值，最小连接数不超过最大连接数。日期字段按 UTC 计算，
// 会话时区固定为 UTC；DSN 中显式给出的会话参数优先。
func poolSettings(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	minConns := cfg.MaxIdleConns
	if minConns < 0 {
		minConns = 0
	}
	if minConns > maxConns {
		minConns = maxConns
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnLifetime
	}

	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = int32(minConns)
	poolConfig.MaxConnLifetime = lifetime
	poolConfig.MaxConnIdleTime = connIdleTime

	params := poolConfig.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	if _, ok := params["timezone"]; !ok {
		params["timezone"] = "UTC"
	}
	return poolConfig, nil
}

// Pool 返回底层的连接池
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Close 关闭连接池，并记录关闭前的使用情况
func (c *Client) Close() {
	stat := c.pool.Stat()
	c.log.Info("closing PostgreSQL pool",
		zap.Int32("total_conns", stat.TotalConns()),
		zap.Int32("acquired_conns", stat.AcquiredConns()),
		zap.Int64("acquire_count", stat.AcquireCount()),
	)
	c.pool.Close()
}
