package model

// IntentType is the high-level purpose of a user message
type IntentType string

const (
	IntentSymptom         IntentType = "symptom"
	IntentCondition       IntentType = "condition"
	IntentGeneralWellness IntentType = "general_wellness"
	IntentPrevention      IntentType = "prevention"
	IntentUnknown         IntentType = "unknown"
)

// SeverityBand is the coarse severity extracted from text
type SeverityBand string

const (
	SeverityMild     SeverityBand = "mild"
	SeverityModerate SeverityBand = "moderate"
	SeveritySevere   SeverityBand = "severe"
)

// Proxy maps a band onto the 1-10 scale used for stored messages.
// A nil band maps to 3.
func (b *SeverityBand) Proxy() int {
	if b == nil {
		return 3
	}
	switch *b {
	case SeveritySevere:
		return 9
	case SeverityModerate:
		return 5
	}
	return 3
}

// Sentiment is the overall tone of a message
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Entities holds structured facts extracted from free text
type Entities struct {
	Symptoms  []string      `json:"symptoms"`
	BodyParts []string      `json:"bodyParts"`
	Severity  *SeverityBand `json:"severity"`
	Duration  *string       `json:"duration"`
	Triggers  []string      `json:"triggers"`
	TimeOfDay *string       `json:"timeOfDay"`
}

// Intent is the classified purpose of a message
type Intent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Entities   Entities   `json:"entities"`
}

// ProcessedInput is the analyzer output for one message
type ProcessedInput struct {
	OriginalText string    `json:"originalText"`
	Intent       Intent    `json:"intent"`
	Keywords     []string  `json:"keywords"`
	MedicalTerms []string  `json:"medicalTerms"`
	Sentiment    Sentiment `json:"sentiment"`
}

// ResponseMode identifies which path produced a response
type ResponseMode string

const (
	ResponseModeAI         ResponseMode = "ai"
	ResponseModeAIRequired ResponseMode = "ai_required"
	ResponseModeMock       ResponseMode = "mock"
)

// Response is the unified orchestrator output
type Response struct {
	Content           string                 `json:"content"`
	Mode              ResponseMode           `json:"mode"`
	Recommendations   []RemedyRecommendation `json:"recommendations,omitempty"`
	FollowUpQuestions []string               `json:"followUpQuestions,omitempty"`
	Error             string                 `json:"error,omitempty"`
}

// ResponseChunk is one streamed fragment of a response. The final chunk has
// Done set and carries the complete response.
type ResponseChunk struct {
	Content  string    `json:"content,omitempty"`
	Done     bool      `json:"done"`
	Response *Response `json:"response,omitempty"`
}
