package app

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/handler"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

const slowRequestThreshold = 2 * time.Second

// Handlers builds the HTTP handlers over the app's services
func (a *App) Handlers() handler.Handlers {
	return handler.Handlers{
		Health:    handler.NewHealthHandler(a.Store, a.Responses, a.logger),
		Assistant: handler.NewAssistantHandler(a.Analyzer, a.Remedies, a.Responses, a.Gateway, a.logger),
		Chat:      handler.NewChatHandler(a.Conversation, a.Chats, a.logger),
		Symptom:   handler.NewSymptomHandler(a.Symptoms, a.Insights, a.logger),
		Data:      handler.NewDataHandler(a.Exports, a.Audit, a.logger),
		Report:    handler.NewReportHandler(a.Reports, a.logger),
	}
}

// Router returns the gin engine with middleware and every route registered
func (a *App) Router(cfg config.ServerConfig) (*gin.Engine, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// recovery must be first
	r.Use(middleware.RecoveryMiddleware(a.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(a.logger))
	r.Use(middleware.ErrorLoggingMiddleware(a.logger))
	r.Use(middleware.SlowRequestLoggingMiddleware(a.logger, slowRequestThreshold))
	r.Use(middleware.OpenAPIValidationMiddleware(doc, a.logger))

	handler.RegisterHandlers(r, a.Handlers())

	a.logger.Info("routes registered", zap.Int("routes", len(r.Routes())))
	return r, nil
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
