package ai

import (
	"fmt"
	"strings"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

const systemPrompt = `You are HealthWise, a knowledgeable and empathetic natural health assistant. Your role is to provide evidence-based natural remedy suggestions and wellness guidance.

IMPORTANT SAFETY GUIDELINES:
- Always include medical disclaimers for serious symptoms
- Recommend consulting healthcare providers for persistent/severe symptoms
- Never diagnose medical conditions
- Focus on natural remedies, lifestyle changes, and wellness practices
- Provide evidence levels for recommendations (limited, moderate, strong)

RESPONSE FORMAT:
- Be conversational and supportive
- Include specific natural remedies with usage instructions
- Mention precautions and potential interactions
- End your response with 2-3 relevant follow-up questions to help the user
- Keep responses focused and practical
- Format follow-up questions as a numbered list at the end

AREAS OF EXPERTISE:
- Natural remedies and herbal medicine
- Nutritional approaches to wellness
- Lifestyle modifications for health
- Preventive health measures
- Stress management and mental wellness
- Sleep optimization
- Exercise and movement therapy

RESPONSE STRUCTURE:
1. Acknowledge the user's concern empathetically
2. Provide natural remedy suggestions with specific usage instructions
3. Include safety disclaimers and precautions
4. End with 2-3 follow-up questions like:
   - Questions about symptom details (severity, duration, triggers)
   - Questions about current medications or treatments
   - Questions about lifestyle factors that might help

Always prioritize user safety while providing helpful natural health guidance.`

const fileContentPlaceholder = "[File content not available for analysis]"

// PromptContext is everything one turn contributes to the prompt
type PromptContext struct {
	Input          model.ProcessedInput
	RecentSymptoms string
	Attachment     *model.Attachment
}

// buildUserPrompt renders the per-turn user prompt from the analyzer output,
// the recent history text and the attachment description
func buildUserPrompt(pc PromptContext) string {
	entities := pc.Input.Intent.Entities

	var b strings.Builder
	fmt.Fprintf(&b, "User message: \"%s\"\n\n", pc.Input.OriginalText)

	if len(entities.Symptoms) > 0 || len(entities.BodyParts) > 0 {
		b.WriteString("Extracted information:\n")
		if len(entities.Symptoms) > 0 {
			fmt.Fprintf(&b, "- Symptoms: %s\n", strings.Join(entities.Symptoms, ", "))
		}
		if len(entities.BodyParts) > 0 {
			fmt.Fprintf(&b, "- Body parts: %s\n", strings.Join(entities.BodyParts, ", "))
		}
		if entities.Severity != nil {
			fmt.Fprintf(&b, "- Severity: %s\n", *entities.Severity)
		}
		if entities.Duration != nil {
			fmt.Fprintf(&b, "- Duration: %s\n", *entities.Duration)
		}
		b.WriteString("\n")
	}

	if pc.RecentSymptoms != "" {
		fmt.Fprintf(&b, "Recent symptom history:\n%s\n\n", pc.RecentSymptoms)
	}

	if a := pc.Attachment; a != nil {
		if a.IsImage() {
			fmt.Fprintf(&b, "Attached image: %q (%s). Describe what is relevant to the user's health question and factor it into your recommendations.\n\n", a.Name, a.MimeType)
		} else {
			fmt.Fprintf(&b, "Attached file: %q (%s)\n%s\n\n", a.Name, a.MimeType, fileContentPlaceholder)
		}
	}

	b.WriteString("Please provide natural health recommendations based on this information. Include specific remedies, usage instructions, and safety considerations.")
	return b.String()
}
