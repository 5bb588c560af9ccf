package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/ai"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const aiRequiredMessage = `I'm sorry, but HealthWise is currently configured to operate in AI-only mode, which requires a live AI connection to provide personalized health guidance.

**To enable AI responses:**

1. **Get an OpenRouter API Key**
   - Visit https://openrouter.ai/keys
   - Sign up and create a new API key

2. **Configure Your Environment**
   - Add ` + "`OPENROUTER_API_KEY=your-api-key`" + ` to your .env file
   - Restart the application

**Why AI-Only Mode?**
This mode ensures you receive the most current, personalized, and comprehensive natural health guidance possible. Mock responses have been disabled to maintain the highest quality of health information.

For immediate assistance with serious health concerns, please consult with a qualified healthcare professional.`

// AIGateway is the part of the AI gateway the orchestrator depends on
type AIGateway interface {
	IsConfigured() bool
	Complete(ctx context.Context, pc ai.PromptContext) ai.Result
	CompleteStreaming(ctx context.Context, pc ai.PromptContext) <-chan ai.Chunk
}

// ResponseRequest is one turn handed to the orchestrator
type ResponseRequest struct {
	Input          model.ProcessedInput
	RecentSymptoms string
	Attachment     *model.Attachment
}

func (r ResponseRequest) promptContext() ai.PromptContext {
	return ai.PromptContext{Input: r.Input, RecentSymptoms: r.RecentSymptoms, Attachment: r.Attachment}
}

// ResponseService chooses between the AI, AI-required and mock paths on every request
type ResponseService struct {
	gateway   AIGateway
	remedies  *RemedyService
	aiOnly    bool
	wordDelay time.Duration
	logger    *zap.Logger
}

// NewResponseService creates a new response orchestrator
func NewResponseService(gateway AIGateway, remedies *RemedyService, aiOnly bool, wordDelay time.Duration, logger *zap.Logger) *ResponseService {
	return &ResponseService{
		gateway:   gateway,
		remedies:  remedies,
		aiOnly:    aiOnly,
		wordDelay: wordDelay,
		logger:    logger,
	}
}

// Mode reports which path the next request would take
func (s *ResponseService) Mode() model.ResponseMode {
	if s.gateway != nil && s.gateway.IsConfigured() {
		return model.ResponseModeAI
	}
	if s.aiOnly {
		return model.ResponseModeAIRequired
	}
	return model.ResponseModeMock
}

// Respond produces a complete response. A failed AI call returns the
// gateway's fallback text in AI mode with Error set. Only a gateway that
// panics or yields nothing degrades to the mock response.
func (s *ResponseService) Respond(ctx context.Context, req ResponseRequest) model.Response {
	switch s.Mode() {
	case model.ResponseModeAI:
		result, err := s.completeAI(ctx, req)
		if err != nil || result.Content == "" {
			if err == nil {
				err = result.Err
			}
			s.logger.Warn("ai response unavailable, falling back to mock", zap.Error(err))
			return s.mockWithError(req.Input, err)
		}
		if result.Err != nil {
			s.logger.Warn("ai response failed", zap.Error(result.Err))
			return model.Response{Content: result.Content, Mode: model.ResponseModeAI, Error: result.Err.Error()}
		}
		return model.Response{Content: result.Content, Mode: model.ResponseModeAI}
	case model.ResponseModeAIRequired:
		return aiRequiredResponse()
	default:
		return s.mockResponse(req.Input)
	}
}

func (s *ResponseService) completeAI(ctx context.Context, req ResponseRequest) (result ai.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai gateway panicked: %v", r)
		}
	}()
	return s.gateway.Complete(ctx, req.promptContext()), nil
}

func (s *ResponseService) openAIStream(ctx context.Context, req ResponseRequest) (chunks <-chan ai.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai gateway panicked: %v", r)
		}
	}()
	return s.gateway.CompleteStreaming(ctx, req.promptContext()), nil
}

func (s *ResponseService) mockWithError(input model.ProcessedInput, err error) model.Response {
	response := s.mockResponse(input)
	if err != nil {
		response.Error = err.Error()
	}
	return response
}

// RespondStreaming emits the response as incremental chunks. The channel
// closes after a Done chunk carrying the full response, or early when ctx is
// cancelled. The concatenated chunk content always equals the final content.
func (s *ResponseService) RespondStreaming(ctx context.Context, req ResponseRequest) <-chan model.ResponseChunk {
	out := make(chan model.ResponseChunk)

	go func() {
		defer close(out)

		var response model.Response
		var ok bool
		switch s.Mode() {
		case model.ResponseModeAI:
			response, ok = s.streamAI(ctx, req, out)
		case model.ResponseModeAIRequired:
			response = aiRequiredResponse()
			ok = s.streamWords(ctx, response.Content, out)
		default:
			response = s.mockResponse(req.Input)
			ok = s.streamWords(ctx, response.Content, out)
		}
		if !ok {
			return
		}
		sendChunk(ctx, out, model.ResponseChunk{Done: true, Response: &response})
	}()

	return out
}

// streamAI forwards gateway deltas. A failure before any content arrived
// streams the gateway's fallback text; a failure after that appends it so
// the text stays consistent. A gateway that panics or closes without a final
// chunk while ctx is still live degrades to the mock stream.
func (s *ResponseService) streamAI(ctx context.Context, req ResponseRequest, out chan<- model.ResponseChunk) (model.Response, bool) {
	chunks, err := s.openAIStream(ctx, req)
	if err != nil {
		s.logger.Warn("ai stream unavailable, falling back to mock", zap.Error(err))
		return s.streamMock(ctx, req.Input, "", err, out)
	}

	var delivered strings.Builder
	for chunk := range chunks {
		if !chunk.Done {
			if !sendChunk(ctx, out, model.ResponseChunk{Content: chunk.Delta}) {
				return model.Response{}, false
			}
			delivered.WriteString(chunk.Delta)
			continue
		}

		result := chunk.Result
		if result.Err == nil {
			return model.Response{Content: result.Content, Mode: model.ResponseModeAI}, true
		}
		s.logger.Warn("ai streaming failed", zap.Error(result.Err))

		if result.Content == "" {
			return s.streamMock(ctx, req.Input, delivered.String(), result.Err, out)
		}
		if delivered.Len() == 0 {
			response := model.Response{Content: result.Content, Mode: model.ResponseModeAI, Error: result.Err.Error()}
			return response, s.streamWords(ctx, response.Content, out)
		}

		tail := "\n\n" + result.Content
		if !sendChunk(ctx, out, model.ResponseChunk{Content: tail}) {
			return model.Response{}, false
		}
		return model.Response{
			Content: delivered.String() + tail,
			Mode:    model.ResponseModeAI,
			Error:   result.Err.Error(),
		}, true
	}

	if ctx.Err() != nil {
		return model.Response{}, false
	}
	err = errors.New("ai stream ended without a result")
	s.logger.Warn("ai stream unavailable, falling back to mock", zap.Error(err))
	return s.streamMock(ctx, req.Input, delivered.String(), err, out)
}

// streamMock streams the mock response after whatever was already delivered
func (s *ResponseService) streamMock(ctx context.Context, input model.ProcessedInput, delivered string, err error, out chan<- model.ResponseChunk) (model.Response, bool) {
	response := s.mockWithError(input, err)
	if delivered != "" {
		if !sendChunk(ctx, out, model.ResponseChunk{Content: "\n\n"}) {
			return model.Response{}, false
		}
		if !s.streamWords(ctx, response.Content, out) {
			return model.Response{}, false
		}
		response.Content = delivered + "\n\n" + response.Content
		return response, true
	}
	return response, s.streamWords(ctx, response.Content, out)
}

// streamWords simulates typing by emitting content one word at a time
func (s *ResponseService) streamWords(ctx context.Context, content string, out chan<- model.ResponseChunk) bool {
	words := strings.Split(content, " ")
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		if !sendChunk(ctx, out, model.ResponseChunk{Content: word}) {
			return false
		}
		if s.wordDelay > 0 && i < len(words)-1 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(s.wordDelay):
			}
		}
	}
	return true
}

func sendChunk(ctx context.Context, out chan<- model.ResponseChunk, c model.ResponseChunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

func aiRequiredResponse() model.Response {
	return model.Response{Content: aiRequiredMessage, Mode: model.ResponseModeAIRequired}
}

// mockResponse renders the deterministic template for the detected intent
func (s *ResponseService) mockResponse(input model.ProcessedInput) model.Response {
	entities := input.Intent.Entities
	recommendations := s.remedies.Recommend(entities.Symptoms, nil, entities.Severity)

	var content string
	var followUps []string
	switch input.Intent.Type {
	case model.IntentSymptom:
		content = symptomResponse(entities, recommendations)
		followUps = symptomFollowUps(entities)
	case model.IntentCondition:
		content = "Thank you for sharing information about your health condition. Managing chronic conditions often benefits from a comprehensive approach that includes both conventional medical care and complementary natural therapies.\n\n**Important:** Please ensure you're working with a qualified healthcare provider for proper diagnosis and treatment of any medical condition. Natural remedies should complement, not replace, professional medical care."
		followUps = []string{
			"Are you currently working with a healthcare provider for this condition?",
			"What specific aspects of your condition would you like natural support for?",
		}
	case model.IntentGeneralWellness:
		content = "It's wonderful that you're taking a proactive approach to your health and wellness! Maintaining optimal health involves a holistic approach that addresses physical, mental, and emotional well-being."
		followUps = []string{
			"What specific area of wellness would you like to focus on?",
			"Are there any particular health goals you're working toward?",
		}
	case model.IntentPrevention:
		content = "Prevention is indeed the best medicine! A proactive approach to health can help you maintain vitality and reduce the risk of various health issues."
	default:
		content = "I'd be happy to help you with health and wellness information! Could you please provide more specific details about:\n\n• Any symptoms you're experiencing\n• The area of your body affected\n• How long you've been experiencing this\n• The severity of your concern\n\nThis will help me provide more targeted natural remedy suggestions for your situation."
		followUps = []string{
			"What specific health concern would you like guidance on?",
			"Are you looking for preventive measures or addressing current symptoms?",
		}
	}

	response := model.Response{Content: content, Mode: model.ResponseModeMock}
	if len(followUps) > 0 {
		response.FollowUpQuestions = followUps
	}
	if len(recommendations) > 0 {
		response.Recommendations = recommendations
	}
	return response
}

func symptomResponse(entities model.Entities, recommendations []model.RemedyRecommendation) string {
	var b strings.Builder
	b.WriteString("I understand you're experiencing ")

	switch {
	case len(entities.Symptoms) > 0:
		b.WriteString(strings.Join(entities.Symptoms, ", "))
		if len(entities.BodyParts) > 0 {
			fmt.Fprintf(&b, " in your %s", strings.Join(entities.BodyParts, ", "))
		}
	case len(entities.BodyParts) > 0:
		fmt.Fprintf(&b, "discomfort in your %s", strings.Join(entities.BodyParts, ", "))
	default:
		b.WriteString("some health concerns")
	}

	if entities.Severity != nil {
		fmt.Fprintf(&b, ". The %s nature of your symptoms", *entities.Severity)
	}
	if entities.Duration != nil {
		fmt.Fprintf(&b, " lasting %s", *entities.Duration)
	}
	b.WriteString(" suggests several natural approaches that may help provide relief.\n\n")

	b.WriteString("**Important Medical Disclaimer:** While natural remedies can be beneficial, persistent or severe symptoms should be evaluated by a healthcare professional. The following suggestions are for informational purposes and should not replace professional medical advice.\n\n")

	if len(recommendations) > 0 {
		b.WriteString("**Recommended Natural Remedies:**\n\n")
		for i, rec := range recommendations {
			remedy := rec.Remedy
			fmt.Fprintf(&b, "**%d. %s**\n", i+1, remedy.Name)
			fmt.Fprintf(&b, "%s\n\n", remedy.Description)
			fmt.Fprintf(&b, "*Benefits:* %s\n", strings.Join(remedy.Benefits, ", "))
			fmt.Fprintf(&b, "*Usage:* %s\n", remedy.Usage)
			if len(remedy.Precautions) > 0 {
				fmt.Fprintf(&b, "*Precautions:* %s\n", strings.Join(remedy.Precautions, ", "))
			}
			if len(remedy.Interactions) > 0 {
				fmt.Fprintf(&b, "*Interactions:* Consult your healthcare provider if taking %s\n", strings.Join(remedy.Interactions, ", "))
			}
			fmt.Fprintf(&b, "*Evidence Level:* %s\n\n", capitalize(string(remedy.EvidenceLevel)))
		}
	}

	b.WriteString("**General Recommendations:**\n")
	b.WriteString("• Stay well-hydrated with water\n")
	b.WriteString("• Ensure adequate rest and sleep\n")
	b.WriteString("• Consider gentle movement or stretching if appropriate\n")
	b.WriteString("• Monitor your symptoms and seek medical attention if they worsen\n\n")
	return b.String()
}

// symptomFollowUps asks for severity when missing, then duration and
// triggers when symptoms are known, then medications; at most two are kept
func symptomFollowUps(entities model.Entities) []string {
	var questions []string
	if entities.Severity == nil {
		questions = append(questions, "How would you rate the severity of your symptoms on a scale of 1-10?")
	}
	if len(entities.Symptoms) > 0 {
		questions = append(questions,
			"How long have you been experiencing these symptoms?",
			"Have you noticed any triggers that make the symptoms worse or better?",
		)
	}
	questions = append(questions, "Are you currently taking any medications or supplements?")
	return questions[:min(2, len(questions))]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
