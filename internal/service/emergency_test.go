package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmergencyScreener_Screen(t *testing.T) {
	screener := NewEmergencyScreener()

	testCases := []struct {
		name     string
		symptoms []string
		severity int
		level    EmergencyLevel
		matched  []string
	}{
		{name: "chest pain", symptoms: []string{"chest pain"}, severity: 3, level: EmergencyLevelEmergency, matched: []string{"chest pain"}},
		{name: "case and spacing ignored", symptoms: []string{"  Difficulty Breathing "}, severity: 1, level: EmergencyLevelEmergency, matched: []string{"  Difficulty Breathing "}},
		{name: "bare pain matches listed phrase", symptoms: []string{"pain"}, severity: 2, level: EmergencyLevelEmergency, matched: []string{"pain"}},
		{name: "urgent symptom", symptoms: []string{"high fever"}, severity: 4, level: EmergencyLevelUrgent, matched: []string{"high fever"}},
		{name: "high severity alone", symptoms: []string{"fatigue"}, severity: 8, level: EmergencyLevelUrgent},
		{name: "nothing notable", symptoms: []string{"fatigue"}, severity: 7, level: EmergencyLevelNone},
		{name: "empty symptoms ignored", symptoms: []string{""}, severity: 1, level: EmergencyLevelNone},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			guidance := screener.Screen(tc.symptoms, tc.severity)
			assert.Equal(t, tc.level, guidance.Level)
			assert.Equal(t, tc.matched, guidance.Matched)
			if tc.level == EmergencyLevelNone {
				assert.Empty(t, guidance.Title)
				return
			}
			assert.NotEmpty(t, guidance.WhileWaiting)
			assert.NotEmpty(t, guidance.Disclaimer)
		})
	}
}

func TestEmergencyScreener_Messages(t *testing.T) {
	screener := NewEmergencyScreener()

	emergency := screener.Screen([]string{"seizure"}, 5)
	assert.Equal(t, "Emergency Medical Attention Needed", emergency.Title)
	assert.Contains(t, emergency.Message, "CALL 911 IMMEDIATELY")

	urgent := screener.Screen([]string{"confusion"}, 5)
	assert.Equal(t, "Urgent Medical Care Recommended", urgent.Title)
	assert.Contains(t, urgent.Message, "Seek Medical Care Soon")
}
