package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

// ModelInfo reports what the AI gateway is connected to
type ModelInfo interface {
	IsConfigured() bool
	ModelName() string
}

// AssistantHandler implements the stateless analysis and remedy endpoints
type AssistantHandler struct {
	analyzer  *service.Analyzer
	remedies  *service.RemedyService
	responses *service.ResponseService
	gateway   ModelInfo
	logger    *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(analyzer *service.Analyzer, remedies *service.RemedyService, responses *service.ResponseService, gateway ModelInfo, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		analyzer:  analyzer,
		remedies:  remedies,
		responses: responses,
		gateway:   gateway,
		logger:    logger,
	}
}

// PostApiV1Analyze runs the text analyzer
func (h *AssistantHandler) PostApiV1Analyze(c *gin.Context) {
	var req api.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}
	c.JSON(http.StatusOK, h.analyzer.Analyze(req.Text))
}

// PostApiV1Recommend scores the catalog against symptoms and conditions
func (h *AssistantHandler) PostApiV1Recommend(c *gin.Context) {
	var req api.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body", err)
		return
	}

	recommendations := h.remedies.Recommend(req.Symptoms, req.Conditions, req.Severity)
	if recommendations == nil {
		recommendations = []model.RemedyRecommendation{}
	}
	c.JSON(http.StatusOK, api.RecommendResponse{Recommendations: recommendations})
}

// GetApiV1Remedies lists the catalog, filtered by type or a search query
func (h *AssistantHandler) GetApiV1Remedies(c *gin.Context) {
	remedyType, err := queryString(c, "type")
	if err != nil {
		badRequest(c, h.logger, "Invalid type parameter", err)
		return
	}
	query, err := queryString(c, "q")
	if err != nil {
		badRequest(c, h.logger, "Invalid q parameter", err)
		return
	}

	var remedies []model.Remedy
	switch {
	case remedyType != "":
		t := model.RemedyType(remedyType)
		if !t.Valid() {
			badRequest(c, h.logger, "Invalid type parameter", fmt.Errorf("unknown remedy type %q", remedyType))
			return
		}
		remedies = h.remedies.ByType(t)
	case query != "":
		remedies = h.remedies.Search(query)
	default:
		remedies = h.remedies.All()
	}
	if remedies == nil {
		remedies = []model.Remedy{}
	}

	c.JSON(http.StatusOK, api.RemediesResponse{Remedies: remedies, Count: len(remedies)})
}

// GetApiV1RemediesId returns one catalog remedy
func (h *AssistantHandler) GetApiV1RemediesId(c *gin.Context) {
	remedy, ok := h.remedies.Remedy(c.Param("id"))
	if !ok {
		notFound(c, "Remedy not found")
		return
	}
	c.JSON(http.StatusOK, remedy)
}

// GetApiV1AiStatus reports the current response mode. Asking also kicks off
// key validation when it has not run yet.
func (h *AssistantHandler) GetApiV1AiStatus(c *gin.Context) {
	c.JSON(http.StatusOK, api.AIStatusResponse{
		Mode:       h.responses.Mode(),
		Configured: h.gateway.IsConfigured(),
		Model:      h.gateway.ModelName(),
	})
}
