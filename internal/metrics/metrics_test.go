package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStockAdjusted(t *testing.T) {
	m := New()

	m.StockAdjusted(-3)
	m.StockAdjusted(5)
	m.StockAdjusted(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockAdjustments.WithLabelValues("consume")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockAdjustments.WithLabelValues("restore")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.stockUnits.WithLabelValues("consume")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.stockUnits.WithLabelValues("restore")))
}

func TestStockAdjusted_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.StockAdjusted(-1) })
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `maintenance_http_requests_total{method="GET",route="/ping",status="204"} 1`))
}
