package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// queryInt binds an optional integer query parameter, returning def when it is absent
func queryInt(c *gin.Context, name string, def int) (int, error) {
	value := def
	var bound *int
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &bound); err != nil {
		return 0, err
	}
	if bound != nil {
		value = *bound
	}
	return value, nil
}

// queryString binds an optional string query parameter
func queryString(c *gin.Context, name string) (string, error) {
	var bound *string
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &bound); err != nil {
		return "", err
	}
	if bound == nil {
		return "", nil
	}
	return *bound, nil
}

func badRequest(c *gin.Context, logger *zap.Logger, message string, err error) {
	logger.Warn("invalid request", zap.String("reason", message), zap.Error(err))
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: stringPtr(err.Error()),
	})
}

func internalError(c *gin.Context, logger *zap.Logger, message string, err error) {
	logger.Error(message, zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Details: stringPtr(err.Error()),
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, api.ErrorResponse{
		Code:    "NOT_FOUND",
		Message: message,
	})
}
