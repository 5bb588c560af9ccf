package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

const (
	serviceName    = "healthwise-backend"
	serviceVersion = "1.0.0"
)

// Pinger checks that storage is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler implements the liveness endpoint
type HealthHandler struct {
	store     Pinger
	responses *service.ResponseService
	logger    *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, responses *service.ResponseService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		responses: responses,
		logger:    logger,
	}
}

// GetHealth reports storage connectivity and the response mode
func (h *HealthHandler) GetHealth(c *gin.Context) {
	mode := h.responses.Mode()

	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed: storage unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
			Status:  "unhealthy",
			Storage: "disconnected",
			Mode:    mode,
			Service: serviceName,
			Version: serviceVersion,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{
		Status:  "healthy",
		Storage: "connected",
		Mode:    mode,
		Service: serviceName,
		Version: serviceVersion,
	})
}
