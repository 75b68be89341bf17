package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// Pinger checks database reachability; *sql.DB satisfies it
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probe
type HealthHandler struct {
	BaseHandler
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check godoc
// @Summary      Health check
// @Description  Report service health including database connectivity
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthData]
// @Failure      503 {object} APIResponse[HealthData]
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.L(ctx).Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIResponse[HealthData]{
			Success: false,
			Data:    HealthData{Status: "degraded", Database: "unreachable"},
		})
		return
	}

	h.Success(c, HealthData{Status: "ok", Database: "ok"})
}
