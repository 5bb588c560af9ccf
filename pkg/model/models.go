package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// AirQuality represents the perceived air quality when a symptom was logged
type AirQuality string

const (
	AirQualityGood     AirQuality = "good"
	AirQualityModerate AirQuality = "moderate"
	AirQualityPoor     AirQuality = "poor"
)

// Valid reports whether q is one of the known air quality values
func (q AirQuality) Valid() bool {
	switch q {
	case AirQualityGood, AirQualityModerate, AirQualityPoor:
		return true
	}
	return false
}

// UnmarshalJSON rejects values outside the air quality vocabulary
func (q *AirQuality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := AirQuality(s)
	if !v.Valid() {
		return fmt.Errorf("invalid air quality %q", s)
	}
	*q = v
	return nil
}

// SymptomEntry represents one user-logged health event
type SymptomEntry struct {
	ID                   string      `json:"id"`
	Symptom              string      `json:"symptom"`
	Severity             int         `json:"severity"`
	Notes                string      `json:"notes"`
	Timestamp            time.Time   `json:"timestamp"`
	Triggers             []string    `json:"triggers,omitempty"`
	Supplements          []string    `json:"supplements,omitempty"`
	NaturalRemedies      []string    `json:"naturalRemedies,omitempty"`
	EnvironmentalFactors []string    `json:"environmentalFactors,omitempty"`
	MindfulnessPractices []string    `json:"mindfulnessPractices,omitempty"`
	AirQuality           *AirQuality `json:"airQuality,omitempty"`
	Weather              string      `json:"weather,omitempty"`
	BodyPart             string      `json:"bodyPart,omitempty"`
	Duration             string      `json:"duration,omitempty"`
}

// MessageRole represents the role of a message sender
type MessageRole string

const (
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleUser      MessageRole = "user"
)

// Valid reports whether r is a known role
func (r MessageRole) Valid() bool {
	return r == MessageRoleAssistant || r == MessageRoleUser
}

// StoredMessage represents one turn in a chat session
type StoredMessage struct {
	ID                string                 `json:"id"`
	Content           string                 `json:"content"`
	Role              MessageRole            `json:"role"`
	Timestamp         time.Time              `json:"timestamp"`
	Recommendations   []RemedyRecommendation `json:"recommendations,omitempty"`
	EmergencySymptoms []string               `json:"emergencySymptoms,omitempty"`
	Severity          *int                   `json:"severity,omitempty"`
}

// ChatSession represents one conversation thread
type ChatSession struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Messages    []StoredMessage `json:"messages"`
	CreatedAt   time.Time       `json:"createdAt"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// RemedyType classifies a catalog remedy
type RemedyType string

const (
	RemedyTypeHerb       RemedyType = "herb"
	RemedyTypeSupplement RemedyType = "supplement"
	RemedyTypeLifestyle  RemedyType = "lifestyle"
	RemedyTypeDietary    RemedyType = "dietary"
	RemedyTypeTherapy    RemedyType = "therapy"
)

// Valid reports whether t is a known remedy type
func (t RemedyType) Valid() bool {
	switch t {
	case RemedyTypeHerb, RemedyTypeSupplement, RemedyTypeLifestyle, RemedyTypeDietary, RemedyTypeTherapy:
		return true
	}
	return false
}

// EvidenceLevel grades the research support behind a remedy
type EvidenceLevel string

const (
	EvidenceLevelHigh        EvidenceLevel = "high"
	EvidenceLevelModerate    EvidenceLevel = "moderate"
	EvidenceLevelLimited     EvidenceLevel = "limited"
	EvidenceLevelTraditional EvidenceLevel = "traditional"
)

// Bonus returns the relevance bonus granted for the evidence level
func (e EvidenceLevel) Bonus() float64 {
	switch e {
	case EvidenceLevelHigh:
		return 0.30
	case EvidenceLevelModerate:
		return 0.20
	case EvidenceLevelLimited:
		return 0.10
	case EvidenceLevelTraditional:
		return 0.05
	}
	return 0
}

// Remedy is a read-only catalog entry
type Remedy struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Type             RemedyType    `json:"type"`
	Description      string        `json:"description"`
	Benefits         []string      `json:"benefits"`
	Usage            string        `json:"usage"`
	Precautions      []string      `json:"precautions"`
	Interactions     []string      `json:"interactions"`
	EvidenceLevel    EvidenceLevel `json:"evidenceLevel"`
	TargetSymptoms   []string      `json:"targetSymptoms"`
	TargetConditions []string      `json:"targetConditions"`
}

// RemedyRecommendation is a scored catalog match
type RemedyRecommendation struct {
	Remedy         Remedy  `json:"remedy"`
	RelevanceScore float64 `json:"relevanceScore"`
	Reasoning      string  `json:"reasoning"`
}

// ExportDocument is the portable snapshot of all user data
type ExportDocument struct {
	Version      string         `json:"version"`
	ExportDate   string         `json:"exportDate"`
	Symptoms     []SymptomEntry `json:"symptoms"`
	ChatSessions []ChatSession  `json:"chatSessions"`
}

// ExportStats summarizes the data an export would contain
type ExportStats struct {
	Symptoms      int `json:"symptoms"`
	Sessions      int `json:"sessions"`
	TotalMessages int `json:"totalMessages"`
}

// ImportStats reports how many records an import wrote
type ImportStats struct {
	Symptoms int `json:"symptoms"`
	Sessions int `json:"sessions"`
}

// ImportResult is the structured outcome of an import
type ImportResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Stats   *ImportStats `json:"stats,omitempty"`
}

// Attachment is a file sent along with a chat message
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data,omitempty"`
}

// IsImage reports whether the attachment should be sent as inline image content
func (a *Attachment) IsImage() bool {
	return a != nil && len(a.MimeType) > 6 && a.MimeType[:6] == "image/"
}

// SymptomPatterns is the aggregate analysis of the symptom log
type SymptomPatterns struct {
	CommonSymptoms   []string `json:"commonSymptoms"`
	AverageSeverity  int      `json:"averageSeverity"`
	FrequentTriggers []string `json:"frequentTriggers"`
	TimePatterns     []string `json:"timePatterns"`
}
