package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

var symptomKeywords = []string{
	"pain", "ache", "hurt", "sore", "burning", "itching", "swelling", "inflammation",
	"fever", "headache", "nausea", "vomiting", "diarrhea", "constipation", "fatigue",
	"tired", "exhausted", "dizzy", "lightheaded", "cough", "congestion", "runny nose",
	"sneezing", "rash", "irritation", "bloating", "cramps", "stiff", "tight",
	"weakness", "numbness", "tingling", "throbbing", "sharp", "dull", "chronic",
	"spasms", "tension", "pressure", "heaviness", "restless", "jittery", "shaky",
}

var bodyPartKeywords = []string{
	"head", "neck", "shoulder", "arm", "elbow", "wrist", "hand", "finger",
	"chest", "back", "stomach", "abdomen", "hip", "leg", "knee", "ankle", "foot",
	"throat", "nose", "eye", "ear", "skin", "joint", "muscle", "bone",
	"spine", "lower back", "upper back", "jaw", "temple", "forehead", "scalp",
}

var conditionKeywords = []string{
	"arthritis", "diabetes", "hypertension", "anxiety", "depression", "insomnia",
	"migraine", "asthma", "allergies", "cold", "flu", "infection", "inflammation",
	"fibromyalgia", "ibs", "gerd", "osteoporosis", "chronic fatigue", "lupus",
}

// severityIndicators is checked in order; the first band with a hit wins.
var severityIndicators = []struct {
	band       model.SeverityBand
	indicators []string
}{
	{model.SeverityMild, []string{"slight", "minor", "little", "mild", "light", "barely", "somewhat", "a bit"}},
	{model.SeverityModerate, []string{"moderate", "medium", "noticeable", "bothering", "uncomfortable", "concerning"}},
	{model.SeveritySevere, []string{"severe", "intense", "extreme", "unbearable", "terrible", "awful", "excruciating", "debilitating", "overwhelming"}},
}

var triggerKeywords = []string{
	"stress", "weather", "food", "exercise", "sitting", "standing", "walking",
	"sleeping", "work", "computer", "phone", "driving", "lifting", "bending",
}

var timeIndicators = []string{
	"morning", "afternoon", "evening", "night", "bedtime", "waking up",
	"after eating", "before eating", "during work", "weekends",
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "of": {}, "with": {}, "by": {}, "i": {}, "my": {}, "me": {}, "have": {}, "has": {}, "am": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "been": {}, "being": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "must": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {}, "he": {}, "she": {}, "they": {}, "them": {},
}

var (
	positiveWords = []string{"better", "good", "great", "excellent", "improved", "relief", "helped", "working"}
	negativeWords = []string{"worse", "bad", "terrible", "awful", "painful", "suffering", "unbearable", "frustrated"}

	preventionKeywords = []string{"prevent", "wellness", "healthy", "maintain"}
	wellnessKeywords   = []string{"feel better", "improve", "boost", "energy"}
)

var (
	compoundSymptomPatterns = []*regexp.Regexp{
		regexp.MustCompile(`muscle\s+(pain|ache|tension|stiffness)`),
		regexp.MustCompile(`joint\s+(pain|ache|stiffness)`),
		regexp.MustCompile(`stomach\s+(pain|ache|upset)`),
		regexp.MustCompile(`chest\s+(pain|tightness|pressure)`),
	}
	painScalePattern = regexp.MustCompile(`(\d+)\s*(?:out of|/)\s*10`)
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(minute|minutes|hour|hours|day|days|week|weeks|month|months|year|years)`),
		regexp.MustCompile(`(yesterday|today|this morning|last night|for a while|recently|chronic|ongoing|persistent)`),
		regexp.MustCompile(`(since\s+\w+)`),
	}
	alphaWord = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// Analyzer extracts health intent and entities from free text.
// It is stateless and safe for concurrent use.
type Analyzer struct{}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze classifies text and extracts its entities
func (a *Analyzer) Analyze(text string) model.ProcessedInput {
	lower := strings.ToLower(text)

	symptoms := a.extractSymptoms(lower)
	bodyParts := containedTerms(lower, bodyPartKeywords)
	intentType, confidence := a.classify(lower, symptoms, bodyParts)

	return model.ProcessedInput{
		OriginalText: text,
		Intent: model.Intent{
			Type:       intentType,
			Confidence: confidence,
			Entities: model.Entities{
				Symptoms:  symptoms,
				BodyParts: bodyParts,
				Severity:  a.extractSeverity(lower),
				Duration:  a.extractDuration(lower),
				Triggers:  containedTerms(lower, triggerKeywords),
				TimeOfDay: a.extractTimeOfDay(lower),
			},
		},
		Keywords:     a.extractKeywords(lower),
		MedicalTerms: a.extractMedicalTerms(lower),
		Sentiment:    a.sentiment(lower),
	}
}

func (a *Analyzer) extractSymptoms(text string) []string {
	found := containedTerms(text, symptomKeywords)
	for _, pattern := range compoundSymptomPatterns {
		found = append(found, pattern.FindAllString(text, -1)...)
	}
	return dedupe(found)
}

func (a *Analyzer) extractSeverity(text string) *model.SeverityBand {
	if m := painScalePattern.FindStringSubmatch(text); m != nil {
		band := model.SeveritySevere
		// Out-of-range integers are treated as the top of the scale.
		if score, err := strconv.Atoi(m[1]); err == nil {
			switch {
			case score <= 3:
				band = model.SeverityMild
			case score <= 6:
				band = model.SeverityModerate
			}
		}
		return &band
	}

	for _, level := range severityIndicators {
		if containsAny(text, level.indicators) {
			band := level.band
			return &band
		}
	}
	return nil
}

func (a *Analyzer) extractDuration(text string) *string {
	for _, pattern := range durationPatterns {
		if m := pattern.FindString(text); m != "" {
			return &m
		}
	}
	return nil
}

func (a *Analyzer) extractTimeOfDay(text string) *string {
	for _, t := range timeIndicators {
		if strings.Contains(text, t) {
			match := t
			return &match
		}
	}
	return nil
}

func (a *Analyzer) classify(text string, symptoms, bodyParts []string) (model.IntentType, float64) {
	switch {
	case containsAny(text, conditionKeywords):
		return model.IntentCondition, 0.85
	case len(symptoms) > 0:
		confidence := min(0.95, 0.6+float64(len(symptoms))*0.1)
		if len(bodyParts) > 0 {
			confidence = min(0.95, confidence+0.1)
		}
		return model.IntentSymptom, confidence
	case containsAny(text, preventionKeywords):
		return model.IntentPrevention, 0.75
	case containsAny(text, wellnessKeywords):
		return model.IntentGeneralWellness, 0.65
	}
	return model.IntentUnknown, 0
}

func (a *Analyzer) extractKeywords(text string) []string {
	keywords := []string{}
	for _, word := range strings.Fields(text) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if alphaWord.MatchString(word) {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

func (a *Analyzer) extractMedicalTerms(text string) []string {
	terms := containedTerms(text, symptomKeywords)
	terms = append(terms, containedTerms(text, bodyPartKeywords)...)
	return append(terms, containedTerms(text, conditionKeywords)...)
}

func (a *Analyzer) sentiment(text string) model.Sentiment {
	positive := len(containedTerms(text, positiveWords))
	negative := len(containedTerms(text, negativeWords))
	switch {
	case positive > negative:
		return model.SentimentPositive
	case negative > positive:
		return model.SentimentNegative
	}
	return model.SentimentNeutral
}

// containedTerms returns the vocabulary terms that occur in text, in vocabulary order
func containedTerms(text string, vocabulary []string) []string {
	found := []string{}
	for _, term := range vocabulary {
		if strings.Contains(text, term) {
			found = append(found, term)
		}
	}
	return found
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
