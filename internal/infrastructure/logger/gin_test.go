package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(core zapcore.Core) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zap.New(core)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(Recovery(log), GinMiddleware(log))
	return router
}

func TestGinMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusConflict, zapcore.WarnLevel},
		{"server error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := newRouter(core)
			router.GET("/suppliers/:id", func(c *gin.Context) {
				L(c.Request.Context()).Debug("inside handler")
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/suppliers/abc?page=2", nil))
			assert.Equal(t, tt.status, w.Code)

			handlerLogs := logs.FilterMessage("inside handler").All()
			require.Len(t, handlerLogs, 1)
			assert.Equal(t, "req-42", handlerLogs[0].ContextMap()["request_id"])

			reqLogs := logs.FilterMessage("HTTP Request").All()
			require.Len(t, reqLogs, 1)
			assert.Equal(t, tt.level, reqLogs[0].Level)
			fields := reqLogs[0].ContextMap()
			assert.Equal(t, "/suppliers/:id", fields["route"])
			assert.Equal(t, "page=2", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
		})
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := newRouter(core)
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, w.Body.String())
	panics := logs.FilterMessage("Panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "req-42", panics[0].ContextMap()["request_id"])
}
