package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/audit"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

const maxImportBytes = 32 << 20

// DataHandler implements export, import, backup and data-clearing endpoints
type DataHandler struct {
	export *service.ExportService
	audit  *audit.Logger
	logger *zap.Logger
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(export *service.ExportService, auditLogger *audit.Logger, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		export: export,
		audit:  auditLogger,
		logger: logger,
	}
}

// GetApiV1Export downloads the export document
func (h *DataHandler) GetApiV1Export(c *gin.Context) {
	data, err := h.export.ExportJSON(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to export data", err)
		return
	}

	filename := h.export.Filename(time.Now())
	h.logger.Info("data exported",
		zap.String("filename", filename),
		zap.Int("data_size_bytes", len(data)),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/json", data)
}

// GetApiV1ExportStats returns the counts shown before exporting
func (h *DataHandler) GetApiV1ExportStats(c *gin.Context) {
	stats, err := h.export.Stats(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to load export stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// PostApiV1Import replaces all data with the uploaded export document. The
// body is the raw document; rejected documents return the import result with
// status 400.
func (h *DataHandler) PostApiV1Import(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		badRequest(c, h.logger, "Failed to read request body", err)
		return
	}

	result := h.export.Import(c.Request.Context(), raw)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

// DeleteApiV1Data clears symptoms and chat sessions together
func (h *DataHandler) DeleteApiV1Data(c *gin.Context) {
	if err := h.export.ClearAll(c.Request.Context()); err != nil {
		internalError(c, h.logger, "Failed to clear data", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetApiV1Audit returns the data operation audit log
func (h *DataHandler) GetApiV1Audit(c *gin.Context) {
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		badRequest(c, h.logger, "Invalid limit parameter", err)
		return
	}

	logs, err := h.audit.GetAuditLogs(c.Request.Context(), limit)
	if err != nil {
		internalError(c, h.logger, "Failed to load audit log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": logs,
		"count":   len(logs),
	})
}

// PostApiV1Backup uploads the export document to backup storage
func (h *DataHandler) PostApiV1Backup(c *gin.Context) {
	name, err := h.export.Backup(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrBackupNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{
				Code:    "BACKUP_NOT_CONFIGURED",
				Message: "Backup storage is not configured",
			})
			return
		}
		internalError(c, h.logger, "Failed to back up data", err)
		return
	}
	c.JSON(http.StatusCreated, api.StoredBlobResponse{BlobName: name, CreatedAt: time.Now().UTC()})
}

// PostApiV1BackupRestore imports a document previously uploaded with backup
func (h *DataHandler) PostApiV1BackupRestore(c *gin.Context) {
	var req api.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	result, err := h.export.Restore(c.Request.Context(), req.BlobName)
	if err != nil {
		if errors.Is(err, service.ErrBackupNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{
				Code:    "BACKUP_NOT_CONFIGURED",
				Message: "Backup storage is not configured",
			})
			return
		}
		internalError(c, h.logger, "Failed to restore backup", err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}
