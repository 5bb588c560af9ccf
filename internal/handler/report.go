package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

// ReportHandler implements report API endpoints
type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1ReportsSymptoms downloads the symptom report as a PDF
func (h *ReportHandler) GetApiV1ReportsSymptoms(c *gin.Context) {
	days, err := queryInt(c, "days", 30)
	if err != nil {
		badRequest(c, h.logger, "Invalid days parameter", err)
		return
	}

	data, err := h.service.GenerateSymptomReport(c.Request.Context(), days)
	if err != nil {
		internalError(c, h.logger, "Failed to generate report", err)
		return
	}

	filename := h.service.ReportFilename(time.Now())
	h.logger.Info("symptom report generated",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(data)),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// PostApiV1ReportsSymptoms generates the report and uploads it to storage
func (h *ReportHandler) PostApiV1ReportsSymptoms(c *gin.Context) {
	days, err := queryInt(c, "days", 30)
	if err != nil {
		badRequest(c, h.logger, "Invalid days parameter", err)
		return
	}

	name, err := h.service.StoreSymptomReport(c.Request.Context(), days)
	if err != nil {
		if errors.Is(err, service.ErrBackupNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{
				Code:    "STORAGE_NOT_CONFIGURED",
				Message: "Report storage is not configured",
			})
			return
		}
		internalError(c, h.logger, "Failed to store report", err)
		return
	}
	c.JSON(http.StatusCreated, api.StoredBlobResponse{BlobName: name, CreatedAt: time.Now().UTC()})
}
