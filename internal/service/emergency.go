package service

import (
	"strings"
)

// EmergencyLevel grades how quickly a user should seek care
type EmergencyLevel string

const (
	EmergencyLevelNone      EmergencyLevel = "none"
	EmergencyLevelUrgent    EmergencyLevel = "urgent"
	EmergencyLevelEmergency EmergencyLevel = "emergency"
)

const severeThreshold = 8

var emergencySymptomList = []string{
	"chest pain", "difficulty breathing", "severe headache", "loss of consciousness",
	"severe bleeding", "severe burns", "poisoning", "allergic reaction",
	"stroke symptoms", "heart attack", "seizure", "severe abdominal pain",
}

var urgentSymptomList = []string{
	"high fever", "persistent vomiting", "severe dehydration", "severe pain",
	"difficulty swallowing", "severe dizziness", "confusion", "severe weakness",
}

var waitingAdvice = []string{
	"Stay calm and try to remain still",
	"Do not take any medications unless prescribed",
	"Have someone stay with you if possible",
	"Keep a list of your medications and medical conditions ready",
	"Do not drive yourself to the hospital",
}

// EmergencyGuidance is the screening outcome shown next to a reply
type EmergencyGuidance struct {
	Level        EmergencyLevel `json:"level"`
	Title        string         `json:"title,omitempty"`
	Message      string         `json:"message,omitempty"`
	Matched      []string       `json:"matched,omitempty"`
	WhileWaiting []string       `json:"whileWaiting,omitempty"`
	Disclaimer   string         `json:"disclaimer,omitempty"`
}

// EmergencyScreener flags symptoms that need professional care
type EmergencyScreener struct{}

// NewEmergencyScreener creates a new screener
func NewEmergencyScreener() *EmergencyScreener {
	return &EmergencyScreener{}
}

// Screen checks symptoms against the emergency and urgent lists. A match in
// either direction counts, so a bare "pain" matches "chest pain". A severity
// of 8 or more is urgent even without a listed symptom.
func (s *EmergencyScreener) Screen(symptoms []string, severity int) EmergencyGuidance {
	emergency := screenAgainst(symptoms, emergencySymptomList)
	urgent := screenAgainst(symptoms, urgentSymptomList)

	switch {
	case len(emergency) > 0:
		return EmergencyGuidance{
			Level:        EmergencyLevelEmergency,
			Title:        "Emergency Medical Attention Needed",
			Message:      "CALL 911 IMMEDIATELY - Your symptoms may indicate a medical emergency that requires immediate professional attention.",
			Matched:      emergency,
			WhileWaiting: waitingAdvice,
			Disclaimer:   emergencyDisclaimer,
		}
	case len(urgent) > 0 || severity >= severeThreshold:
		return EmergencyGuidance{
			Level:        EmergencyLevelUrgent,
			Title:        "Urgent Medical Care Recommended",
			Message:      "Seek Medical Care Soon - Your symptoms suggest you should see a healthcare provider within the next few hours.",
			Matched:      urgent,
			WhileWaiting: waitingAdvice,
			Disclaimer:   emergencyDisclaimer,
		}
	}
	return EmergencyGuidance{Level: EmergencyLevelNone}
}

const emergencyDisclaimer = "This guidance is for informational purposes only and should not replace professional medical judgment. When in doubt, always seek immediate medical attention."

func screenAgainst(symptoms, list []string) []string {
	var matched []string
	for _, symptom := range symptoms {
		s := strings.ToLower(strings.TrimSpace(symptom))
		if s == "" {
			continue
		}
		for _, term := range list {
			if strings.Contains(s, term) || strings.Contains(term, s) {
				matched = append(matched, symptom)
				break
			}
		}
	}
	return matched
}
