package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every endpoint implementation
type Handlers struct {
	Health    *HealthHandler
	Assistant *AssistantHandler
	Chat      *ChatHandler
	Symptom   *SymptomHandler
	Data      *DataHandler
	Report    *ReportHandler
}

// RegisterHandlers wires every route onto r
func RegisterHandlers(r gin.IRouter, h Handlers) {
	r.GET("/health", h.Health.GetHealth)

	v1 := r.Group("/api/v1")

	v1.POST("/analyze", h.Assistant.PostApiV1Analyze)
	v1.POST("/recommend", h.Assistant.PostApiV1Recommend)
	v1.GET("/remedies", h.Assistant.GetApiV1Remedies)
	v1.GET("/remedies/:id", h.Assistant.GetApiV1RemediesId)
	v1.GET("/ai/status", h.Assistant.GetApiV1AiStatus)

	v1.POST("/chat", h.Chat.PostApiV1Chat)
	v1.POST("/chat/stream", h.Chat.PostApiV1ChatStream)
	v1.POST("/chat/symptom", h.Chat.PostApiV1ChatSymptom)
	v1.POST("/chat/history", h.Chat.PostApiV1ChatHistory)

	v1.GET("/sessions", h.Chat.GetApiV1Sessions)
	v1.POST("/sessions", h.Chat.PostApiV1Sessions)
	v1.DELETE("/sessions", h.Chat.DeleteApiV1Sessions)
	v1.GET("/sessions/current", h.Chat.GetApiV1SessionsCurrent)
	v1.PUT("/sessions/current", h.Chat.PutApiV1SessionsCurrent)
	v1.GET("/sessions/:id", h.Chat.GetApiV1SessionsId)
	v1.DELETE("/sessions/:id", h.Chat.DeleteApiV1SessionsId)
	v1.PUT("/sessions/:id/title", h.Chat.PutApiV1SessionsIdTitle)

	v1.GET("/symptoms", h.Symptom.GetApiV1Symptoms)
	v1.POST("/symptoms", h.Symptom.PostApiV1Symptoms)
	v1.DELETE("/symptoms", h.Symptom.DeleteApiV1Symptoms)
	v1.GET("/symptoms/recent", h.Symptom.GetApiV1SymptomsRecent)
	v1.GET("/symptoms/patterns", h.Symptom.GetApiV1SymptomsPatterns)
	v1.GET("/symptoms/summary", h.Symptom.GetApiV1SymptomsSummary)
	v1.GET("/insights", h.Symptom.GetApiV1Insights)

	v1.GET("/export", h.Data.GetApiV1Export)
	v1.GET("/export/stats", h.Data.GetApiV1ExportStats)
	v1.POST("/import", h.Data.PostApiV1Import)
	v1.DELETE("/data", h.Data.DeleteApiV1Data)
	v1.GET("/audit", h.Data.GetApiV1Audit)
	v1.POST("/backup", h.Data.PostApiV1Backup)
	v1.POST("/backup/restore", h.Data.PostApiV1BackupRestore)

	v1.GET("/reports/symptoms", h.Report.GetApiV1ReportsSymptoms)
	v1.POST("/reports/symptoms", h.Report.PostApiV1ReportsSymptoms)
}
