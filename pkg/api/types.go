package api

import (
	"time"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// AnalyzeRequest defines model for AnalyzeRequest.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// RecommendRequest defines model for RecommendRequest.
type RecommendRequest struct {
	Symptoms   []string            `json:"symptoms"`
	Conditions []string            `json:"conditions"`
	Severity   *model.SeverityBand `json:"severity,omitempty"`
}

// RecommendResponse defines model for RecommendResponse.
type RecommendResponse struct {
	Recommendations []model.RemedyRecommendation `json:"recommendations"`
}

// RemediesResponse defines model for RemediesResponse.
type RemediesResponse struct {
	Remedies []model.Remedy `json:"remedies"`
	Count    int            `json:"count"`
}

// AIStatusResponse defines model for AIStatusResponse.
type AIStatusResponse struct {
	Mode       model.ResponseMode `json:"mode"`
	Configured bool               `json:"configured"`
	Model      string             `json:"model"`
}

// ChatRequest defines model for ChatRequest.
type ChatRequest struct {
	Content    string            `json:"content"`
	Attachment *model.Attachment `json:"attachment,omitempty"`
}

// CurrentSessionRequest defines model for CurrentSessionRequest.
type CurrentSessionRequest struct {
	ID string `json:"id"`
}

// TitleRequest defines model for TitleRequest.
type TitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// SessionsResponse defines model for SessionsResponse.
type SessionsResponse struct {
	Sessions []model.ChatSession `json:"sessions"`
	Count    int                 `json:"count"`
}

// SymptomsResponse defines model for SymptomsResponse.
type SymptomsResponse struct {
	Symptoms []model.SymptomEntry `json:"symptoms"`
	Count    int                  `json:"count"`
}

// SymptomSummaryResponse defines model for SymptomSummaryResponse.
type SymptomSummaryResponse struct {
	Summary string `json:"summary"`
}

// RestoreRequest defines model for RestoreRequest.
type RestoreRequest struct {
	BlobName string `json:"blobName" binding:"required"`
}

// StoredBlobResponse defines model for StoredBlobResponse.
type StoredBlobResponse struct {
	BlobName  string    `json:"blobName"`
	CreatedAt time.Time `json:"createdAt"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status  string             `json:"status"`
	Storage string             `json:"storage"`
	Mode    model.ResponseMode `json:"mode"`
	Service string             `json:"service"`
	Version string             `json:"version"`
	Error   string             `json:"error,omitempty"`
}
