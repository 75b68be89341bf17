package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
	})
	return mp, reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics(t *testing.T) {
	t.Run("nil meter is a no-op", func(t *testing.T) {
		router := gin.New()
		router.Use(HTTPMetrics(nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("counts requests by route pattern and status class", func(t *testing.T) {
		mp, reader := setupTestMeter(t)
		router := gin.New()
		router.Use(HTTPMetrics(mp.Meter("test")))
		router.GET("/suppliers/:id", func(c *gin.Context) {
			if c.Param("id") == "missing" {
				c.Status(http.StatusNotFound)
				return
			}
			c.Status(http.StatusOK)
		})

		for _, path := range []string{"/suppliers/a", "/suppliers/b", "/suppliers/missing"} {
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		m := findMetric(t, reader, "http_server_request_total")
		require.NotNil(t, m)
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		counts := map[string]int64{}
		for _, dp := range sum.DataPoints {
			route, _ := dp.Attributes.Value(attribute.Key("http_route"))
			assert.Equal(t, "/suppliers/:id", route.AsString())
			class, _ := dp.Attributes.Value(attribute.Key("http_status_class"))
			counts[class.AsString()] += dp.Value
		}
		assert.Equal(t, int64(2), counts["2xx"])
		assert.Equal(t, int64(1), counts["4xx"])

		assert.NotNil(t, findMetric(t, reader, "http_server_request_duration_seconds"))
	})
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		204: "2xx",
		302: "3xx",
		404: "4xx",
		422: "4xx",
		502: "5xx",
		100: "other",
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusClass(code))
	}
}
