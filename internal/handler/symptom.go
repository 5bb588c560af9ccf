package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

// SymptomHandler implements the symptom tracker and insights endpoints
type SymptomHandler struct {
	symptoms *service.SymptomStore
	insights *service.InsightsService
	logger   *zap.Logger
}

// NewSymptomHandler creates a new SymptomHandler
func NewSymptomHandler(symptoms *service.SymptomStore, insights *service.InsightsService, logger *zap.Logger) *SymptomHandler {
	return &SymptomHandler{
		symptoms: symptoms,
		insights: insights,
		logger:   logger,
	}
}

// GetApiV1Symptoms lists the log newest first, optionally filtered by symptom
// type and truncated to limit
func (h *SymptomHandler) GetApiV1Symptoms(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		badRequest(c, h.logger, "Invalid limit parameter", err)
		return
	}
	symptomType, err := queryString(c, "type")
	if err != nil {
		badRequest(c, h.logger, "Invalid type parameter", err)
		return
	}

	var entries []model.SymptomEntry
	if symptomType != "" {
		entries, err = h.symptoms.ByType(c.Request.Context(), symptomType)
		if err == nil && limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
	} else {
		entries, err = h.symptoms.List(c.Request.Context(), limit)
	}
	if err != nil {
		internalError(c, h.logger, "Failed to load symptoms", err)
		return
	}
	c.JSON(http.StatusOK, api.SymptomsResponse{Symptoms: entries, Count: len(entries)})
}

// PostApiV1Symptoms logs a symptom
func (h *SymptomHandler) PostApiV1Symptoms(c *gin.Context) {
	var entry model.SymptomEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	saved, err := h.symptoms.Add(c.Request.Context(), entry)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSymptom) {
			badRequest(c, h.logger, "Invalid symptom entry", err)
			return
		}
		internalError(c, h.logger, "Failed to log symptom", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteApiV1Symptoms clears the log
func (h *SymptomHandler) DeleteApiV1Symptoms(c *gin.Context) {
	if err := h.symptoms.ClearAll(c.Request.Context()); err != nil {
		internalError(c, h.logger, "Failed to clear symptoms", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetApiV1SymptomsRecent returns entries of the last days days (default 7)
func (h *SymptomHandler) GetApiV1SymptomsRecent(c *gin.Context) {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		badRequest(c, h.logger, "Invalid days parameter", err)
		return
	}

	entries, err := h.symptoms.Recent(c.Request.Context(), days)
	if err != nil {
		internalError(c, h.logger, "Failed to load symptoms", err)
		return
	}
	c.JSON(http.StatusOK, api.SymptomsResponse{Symptoms: entries, Count: len(entries)})
}

// GetApiV1SymptomsPatterns aggregates the whole log
func (h *SymptomHandler) GetApiV1SymptomsPatterns(c *gin.Context) {
	patterns, err := h.symptoms.AnalyzePatterns(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to analyze symptom patterns", err)
		return
	}
	c.JSON(http.StatusOK, patterns)
}

// GetApiV1SymptomsSummary returns the markdown summary the chat recites
func (h *SymptomHandler) GetApiV1SymptomsSummary(c *gin.Context) {
	summary, err := h.symptoms.SummaryForChat(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "Failed to summarize symptoms", err)
		return
	}
	c.JSON(http.StatusOK, api.SymptomSummaryResponse{Summary: summary})
}

// GetApiV1Insights returns trends and wellness metrics for 7, 30 or 90 days
func (h *SymptomHandler) GetApiV1Insights(c *gin.Context) {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		badRequest(c, h.logger, "Invalid days parameter", err)
		return
	}

	insights, err := h.insights.GetInsights(c.Request.Context(), days)
	if err != nil {
		internalError(c, h.logger, "Failed to compute insights", err)
		return
	}
	c.JSON(http.StatusOK, insights)
}
