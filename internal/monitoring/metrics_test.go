package monitoring

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Run("业务指标计数", func(t *testing.T) {
		m := NewMetrics()
		m.MailLogged("parcel")
		m.MailLogged("parcel")
		m.CapacityRejected("recipient")
		m.EventPublished("mail.logged", true)
		m.EventPublished("mail.logged", false)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.MailLoggedTotal.WithLabelValues("parcel")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CapacityRejectedTotal.WithLabelValues("recipient")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublishedTotal.WithLabelValues("mail.logged", "error")))
	})

	t.Run("多个实例互不冲突", func(t *testing.T) {
		require.NotPanics(t, func() {
			NewMetrics()
			NewMetrics()
		})
	})

	t.Run("导出 HTTP 指标", func(t *testing.T) {
		m := NewMetrics()
		m.RecordHTTPRequest("POST", "/api", "logMail", 200, 15*time.Millisecond, 120, 40)

		rec := httptest.NewRecorder()
		m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `mailroom_http_requests_total{action="logMail",endpoint="/api",method="POST",status_code="200"} 1`)
	})
}
