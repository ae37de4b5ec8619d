package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("加载默认配置成功", func(t *testing.T) {
		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "", cfg.Database.Type)
		assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "mailroom.events", cfg.RabbitMQ.Exchange)
		assert.Equal(t, "https://dashboard.assembly.com", cfg.Billing.PortalURL)
		assert.Equal(t, "LOC001", cfg.Onboarding.DefaultLocation)
		assert.Equal(t, "America/Toronto", cfg.Onboarding.DefaultTimezone)
		assert.Equal(t, "canadian", cfg.Onboarding.DefaultCustomerType)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		t.Setenv("MAILROOM_SERVER_HOST", "127.0.0.1")
		t.Setenv("MAILROOM_SERVER_PORT", "9090")
		t.Setenv("MAILROOM_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("MAILROOM_LOG_LEVEL", "debug")
		t.Setenv("MAILROOM_LOG_DEVELOPMENT", "true")
		t.Setenv("MAILROOM_DATABASE_TYPE", "Postgres")
		t.Setenv("MAILROOM_DATABASE_DSN", "postgres://u:p@localhost/mail")
		t.Setenv("MAILROOM_REDIS_CACHE_TTL", "1m")
		t.Setenv("MAILROOM_ONBOARDING_DEFAULT_LOCATION", "LOC009")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Development)
		assert.Equal(t, "postgres", cfg.Database.Type)
		assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
		assert.Equal(t, "LOC009", cfg.Onboarding.DefaultLocation)
	})

	t.Run("不支持的数据库类型", func(t *testing.T) {
		t.Setenv("MAILROOM_DATABASE_TYPE", "sqlite")
		t.Setenv("MAILROOM_DATABASE_DSN", "file.db")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("设置数据库类型但缺少连接串", func(t *testing.T) {
		t.Setenv("MAILROOM_DATABASE_TYPE", "mysql")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("无效的关闭超时", func(t *testing.T) {
		t.Setenv("MAILROOM_SERVER_SHUTDOWN_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList(" a ,, b "))
	assert.Empty(t, parseList(""))
}
