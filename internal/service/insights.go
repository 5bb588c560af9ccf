package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

// Trend is the direction a metric moved
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MetricStatus grades a metric value
type MetricStatus string

const (
	StatusGood       MetricStatus = "good"
	StatusWarning    MetricStatus = "warning"
	StatusConcerning MetricStatus = "concerning"
)

// HealthMetric is one headline number on the insights view
type HealthMetric struct {
	Label  string       `json:"label"`
	Value  int          `json:"value"`
	Trend  Trend        `json:"trend"`
	Status MetricStatus `json:"status"`
}

// DailySymptoms aggregates one calendar day of the log
type DailySymptoms struct {
	Date            string  `json:"date"`
	Count           int     `json:"count"`
	AverageSeverity float64 `json:"averageSeverity"`
}

// HealthInsights is the aggregated view of the symptom log
type HealthInsights struct {
	Period         string                `json:"period"`
	TotalEntries   int                   `json:"totalEntries"`
	Metrics        []HealthMetric        `json:"metrics"`
	Insights       []string              `json:"insights"`
	Patterns       model.SymptomPatterns `json:"patterns"`
	TimeSeriesData []DailySymptoms       `json:"timeSeriesData"`
}

// InsightsService derives trends and wellness metrics from the symptom log
type InsightsService struct {
	symptoms *SymptomStore
	logger   *zap.Logger
}

// NewInsightsService creates a new InsightsService
func NewInsightsService(symptoms *SymptomStore, logger *zap.Logger) *InsightsService {
	return &InsightsService{
		symptoms: symptoms,
		logger:   logger,
	}
}

// GetInsights computes metrics over the whole log and a daily series over the
// last days days (7, 30 or 90; anything else falls back to 7)
func (s *InsightsService) GetInsights(ctx context.Context, days int) (*HealthInsights, error) {
	days = s.normalizeDays(days)

	all, err := s.symptoms.load(ctx)
	if err != nil {
		s.logger.Error("failed to load symptoms for insights", zap.Error(err))
		return nil, fmt.Errorf("failed to load symptoms: %w", err)
	}

	now := s.symptoms.now()
	recent := s.symptoms.recentOf(all, 7)
	patterns := s.symptoms.analyze(all)
	wellness := wellnessScore(patterns.AverageSeverity, len(recent))

	insights := &HealthInsights{
		Period:       fmt.Sprintf("%d days", days),
		TotalEntries: len(all),
		Metrics: []HealthMetric{
			{
				Label:  "Average Severity",
				Value:  patterns.AverageSeverity,
				Trend:  severityTrend(all),
				Status: bandStatus(patterns.AverageSeverity, 3, 6),
			},
			{
				Label:  "Symptom Frequency",
				Value:  len(recent),
				Trend:  frequencyTrend(all, len(recent), now),
				Status: bandStatus(len(recent), 2, 5),
			},
			{
				Label:  "Wellness Score",
				Value:  wellness,
				Trend:  TrendStable,
				Status: wellnessStatus(wellness),
			},
		},
		Insights:       generateInsights(patterns, recent),
		Patterns:       patterns,
		TimeSeriesData: s.dailySeries(all, days, now),
	}

	s.logger.Info("health insights computed",
		zap.Int("total_entries", len(all)),
		zap.Int("recent_entries", len(recent)),
		zap.Int("wellness_score", wellness),
	)
	return insights, nil
}

// normalizeDays accepts 7, 30 or 90 and falls back to 7
func (s *InsightsService) normalizeDays(days int) int {
	if days != 7 && days != 30 && days != 90 {
		s.logger.Warn("invalid days parameter, defaulting to 7", zap.Int("days", days))
		return 7
	}
	return days
}

// severityTrend compares the newer half of the log with the older half
func severityTrend(entries []model.SymptomEntry) Trend {
	if len(entries) < 4 {
		return TrendStable
	}
	half := len(entries) / 2
	recentAvg := averageSeverity(entries[:half])
	olderAvg := averageSeverity(entries[half:])

	switch {
	case recentAvg > olderAvg+0.5:
		return TrendUp
	case recentAvg < olderAvg-0.5:
		return TrendDown
	}
	return TrendStable
}

// frequencyTrend compares the last week with the week before once there are
// at least 14 entries
func frequencyTrend(entries []model.SymptomEntry, lastWeek int, now time.Time) Trend {
	if len(entries) < 14 {
		return TrendStable
	}
	previousWeek := 0
	for _, e := range entries {
		days := now.Sub(e.Timestamp).Hours() / 24
		if days >= 7 && days < 14 {
			previousWeek++
		}
	}

	switch {
	case lastWeek > previousWeek:
		return TrendUp
	case lastWeek < previousWeek:
		return TrendDown
	}
	return TrendStable
}

func wellnessScore(avgSeverity, frequency int) int {
	severityScore := math.Max(0, float64(100-avgSeverity*10))
	frequencyScore := math.Max(0, float64(100-frequency*15))
	return int(math.Round((severityScore + frequencyScore) / 2))
}

func bandStatus(v, good, warning int) MetricStatus {
	switch {
	case v <= good:
		return StatusGood
	case v <= warning:
		return StatusWarning
	}
	return StatusConcerning
}

func wellnessStatus(score int) MetricStatus {
	switch {
	case score >= 70:
		return StatusGood
	case score >= 50:
		return StatusWarning
	}
	return StatusConcerning
}

func generateInsights(patterns model.SymptomPatterns, recent []model.SymptomEntry) []string {
	if len(recent) == 0 {
		return []string{"Great job! You haven't logged any symptoms in the past week."}
	}

	var insights []string
	if patterns.AverageSeverity <= 3 {
		insights = append(insights, "Your symptoms are generally mild, which is encouraging.")
	} else if patterns.AverageSeverity >= 7 {
		insights = append(insights, "Your symptoms tend to be severe. Consider consulting a healthcare provider.")
	}

	if len(patterns.FrequentTriggers) > 0 {
		insights = append(insights, fmt.Sprintf("Your most common triggers are: %s. Consider avoiding or managing these triggers.", strings.Join(patterns.FrequentTriggers, ", ")))
	}
	if len(patterns.TimePatterns) > 0 {
		insights = append(insights, fmt.Sprintf("Pattern detected: %s. This might help you prepare for and manage symptoms.", patterns.TimePatterns[0]))
	}
	if len(recent) > 5 {
		insights = append(insights, "You've been experiencing symptoms frequently. Consider tracking potential triggers more closely.")
	}

	stressRelated := 0
	for _, e := range recent {
		for _, trigger := range e.Triggers {
			if strings.EqualFold(trigger, "stress") {
				stressRelated++
				break
			}
		}
	}
	if float64(stressRelated) > float64(len(recent))*0.5 {
		insights = append(insights, "Many of your symptoms appear stress-related. Consider stress management techniques like meditation or yoga.")
	}
	return insights
}

// dailySeries buckets entries of the last days days by local calendar day, oldest first
func (s *InsightsService) dailySeries(entries []model.SymptomEntry, days int, now time.Time) []DailySymptoms {
	loc := s.symptoms.location
	today := now.In(loc)
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -(days - 1))

	series := make([]DailySymptoms, days)
	totals := make([]int, days)
	for i := range series {
		series[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	for _, e := range entries {
		ts := e.Timestamp.In(loc)
		if ts.Before(start) {
			continue
		}
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		i := int(math.Round(day.Sub(start).Hours() / 24))
		if i < 0 || i >= days {
			continue
		}
		series[i].Count++
		totals[i] += e.Severity
	}

	for i := range series {
		if series[i].Count > 0 {
			series[i].AverageSeverity = math.Round(float64(totals[i])/float64(series[i].Count)*10) / 10
		}
	}
	return series
}

func averageSeverity(entries []model.SymptomEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += e.Severity
	}
	return float64(total) / float64(len(entries))
}
