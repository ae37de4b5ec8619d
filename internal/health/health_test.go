package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"mailroom/backend/internal/storage/memory"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthChecker(t *testing.T) {
	t.Run("依赖正常时就绪", func(t *testing.T) {
		hc := NewHealthChecker(memory.NewStore(), nil, nil)

		rec := httptest.NewRecorder()
		hc.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		results := hc.CheckHealth()
		assert.Equal(t, "OK", results["store"])
	})

	t.Run("依赖异常时未就绪但仍存活", func(t *testing.T) {
		broken := pingFunc(func(context.Context) error { return errors.New("connection refused") })
		hc := NewHealthChecker(memory.NewStore(), nil, map[string]Pinger{"redis": broken})

		rec := httptest.NewRecorder()
		hc.ReadyHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		rec = httptest.NewRecorder()
		hc.LiveHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, "ERROR: connection refused", hc.CheckHealth()["redis"])
	})
}
