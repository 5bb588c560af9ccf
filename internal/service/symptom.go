package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
	"go.uber.org/zap"
)

const (
	maxCommonSymptoms   = 5
	maxFrequentTriggers = 3
	timePatternShare    = 0.4
	summaryDays         = 7
)

// SymptomStore owns the newest-first symptom log
type SymptomStore struct {
	store    repository.DocumentStore
	mu       sync.Mutex
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

// NewSymptomStore creates a SymptomStore persisting through store
func NewSymptomStore(store repository.DocumentStore, logger *zap.Logger) *SymptomStore {
	return &SymptomStore{
		store:    store,
		now:      time.Now,
		location: time.Local,
		logger:   logger,
	}
}

func (s *SymptomStore) load(ctx context.Context) ([]model.SymptomEntry, error) {
	entries, err := loadDocument[[]model.SymptomEntry](ctx, s.store, symptomsKey, s.logger)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.SymptomEntry{}
	}
	return entries, nil
}

// Add validates entry, prepends it to the log and persists the log.
// Missing id and timestamp are filled in.
func (s *SymptomStore) Add(ctx context.Context, entry model.SymptomEntry) (model.SymptomEntry, error) {
	entry.Symptom = strings.TrimSpace(entry.Symptom)
	if entry.Symptom == "" {
		return model.SymptomEntry{}, fmt.Errorf("%w: symptom is required", ErrInvalidSymptom)
	}
	if entry.Severity < 1 || entry.Severity > 10 {
		return model.SymptomEntry{}, fmt.Errorf("%w: severity must be between 1 and 10, got %d", ErrInvalidSymptom, entry.Severity)
	}
	if entry.AirQuality != nil && !entry.AirQuality.Valid() {
		return model.SymptomEntry{}, fmt.Errorf("%w: unknown air quality %q", ErrInvalidSymptom, *entry.AirQuality)
	}

	if entry.ID == "" {
		entry.ID = uuid.Must(uuid.NewV7()).String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	normalizeEntry(&entry)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return model.SymptomEntry{}, err
	}

	entries = append([]model.SymptomEntry{entry}, entries...)
	if err := saveDocument(ctx, s.store, symptomsKey, entries, s.logger); err != nil {
		return model.SymptomEntry{}, err
	}

	s.logger.Info("symptom logged",
		zap.String("symptom_id", entry.ID),
		zap.Int("severity", entry.Severity),
	)
	return entry, nil
}

// List returns the log newest-first, truncated to limit when limit > 0
func (s *SymptomStore) List(ctx context.Context, limit int) ([]model.SymptomEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Recent returns entries logged within the last days days
func (s *SymptomStore) Recent(ctx context.Context, days int) ([]model.SymptomEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.recentOf(entries, days), nil
}

func (s *SymptomStore) recentOf(entries []model.SymptomEntry, days int) []model.SymptomEntry {
	cutoff := s.now().AddDate(0, 0, -days)
	recent := []model.SymptomEntry{}
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			recent = append(recent, e)
		}
	}
	return recent
}

// ByType returns entries whose symptom contains symptomType, case-insensitively
func (s *SymptomStore) ByType(ctx context.Context, symptomType string) ([]model.SymptomEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(symptomType)
	out := []model.SymptomEntry{}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Symptom), q) {
			out = append(out, e)
		}
	}
	return out, nil
}

// AnalyzePatterns aggregates the whole log
func (s *SymptomStore) AnalyzePatterns(ctx context.Context) (model.SymptomPatterns, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return model.SymptomPatterns{}, err
	}
	return s.analyze(entries), nil
}

func (s *SymptomStore) analyze(entries []model.SymptomEntry) model.SymptomPatterns {
	patterns := model.SymptomPatterns{
		CommonSymptoms:   []string{},
		FrequentTriggers: []string{},
		TimePatterns:     []string{},
	}
	if len(entries) == 0 {
		return patterns
	}

	symptoms := newCounter()
	triggers := newCounter()
	totalSeverity := 0
	var morning, afternoon, evening int

	for _, e := range entries {
		symptoms.add(e.Symptom)
		for _, t := range e.Triggers {
			triggers.add(t)
		}
		totalSeverity += e.Severity

		switch hour := e.Timestamp.In(s.location).Hour(); {
		case hour >= 6 && hour < 12:
			morning++
		case hour >= 12 && hour < 18:
			afternoon++
		default:
			evening++
		}
	}

	patterns.CommonSymptoms = symptoms.top(maxCommonSymptoms)
	patterns.FrequentTriggers = triggers.top(maxFrequentTriggers)
	patterns.AverageSeverity = roundHalfUp(float64(totalSeverity) / float64(len(entries)))

	total := float64(morning + afternoon + evening)
	if float64(morning)/total > timePatternShare {
		patterns.TimePatterns = append(patterns.TimePatterns, "Morning symptoms are common")
	}
	if float64(afternoon)/total > timePatternShare {
		patterns.TimePatterns = append(patterns.TimePatterns, "Afternoon symptoms are frequent")
	}
	if float64(evening)/total > timePatternShare {
		patterns.TimePatterns = append(patterns.TimePatterns, "Evening/night symptoms occur often")
	}
	return patterns
}

// SummaryForChat renders the last week of the log as a markdown summary
func (s *SymptomStore) SummaryForChat(ctx context.Context) (string, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	recent := s.recentOf(entries, summaryDays)
	if len(recent) == 0 {
		return "No recent symptoms logged in the tracker.", nil
	}
	patterns := s.analyze(entries)

	var b strings.Builder
	b.WriteString("**Recent Symptom Summary (Last 7 days):**\n\n")
	fmt.Fprintf(&b, "• **Total entries:** %d\n", len(recent))
	if len(patterns.CommonSymptoms) > 0 {
		fmt.Fprintf(&b, "• **Most common symptoms:** %s\n", strings.Join(headOf(patterns.CommonSymptoms, 3), ", "))
	}
	fmt.Fprintf(&b, "• **Average severity:** %d/10\n", patterns.AverageSeverity)
	if len(patterns.FrequentTriggers) > 0 {
		fmt.Fprintf(&b, "• **Common triggers:** %s\n", strings.Join(patterns.FrequentTriggers, ", "))
	}
	if len(patterns.TimePatterns) > 0 {
		fmt.Fprintf(&b, "• **Patterns:** %s\n", strings.Join(patterns.TimePatterns, ", "))
	}

	b.WriteString("\n**Recent entries:**\n")
	for i, e := range headOf(recent, 3) {
		fmt.Fprintf(&b, "%d. %s (%d/10) - %s\n", i+1, e.Symptom, e.Severity, s.formatDate(e.Timestamp))
	}
	return b.String(), nil
}

// ClearAll empties the log
func (s *SymptomStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := saveDocument(ctx, s.store, symptomsKey, []model.SymptomEntry{}, s.logger); err != nil {
		return err
	}
	s.logger.Info("symptom log cleared")
	return nil
}

// ImportReplace overwrites the whole log with entries
func (s *SymptomStore) ImportReplace(ctx context.Context, entries []model.SymptomEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveDocument(ctx, s.store, symptomsKey, normalizeEntries(entries), s.logger)
}

// stageReplace records the replacement of the log in a batch
func (s *SymptomStore) stageReplace(b *repository.Batch, entries []model.SymptomEntry) error {
	raw, err := encodeDocument(symptomsKey, normalizeEntries(entries))
	if err != nil {
		return err
	}
	b.Put(symptomsKey, raw)
	return nil
}

func (s *SymptomStore) formatDate(t time.Time) string {
	return t.In(s.location).Format("2006-01-02")
}

func normalizeEntries(entries []model.SymptomEntry) []model.SymptomEntry {
	out := make([]model.SymptomEntry, len(entries))
	for i, e := range entries {
		normalizeEntry(&e)
		out[i] = e
	}
	return out
}

// normalizeEntry drops empty optional sets so they are absent when serialized
func normalizeEntry(e *model.SymptomEntry) {
	for _, set := range []*[]string{&e.Triggers, &e.Supplements, &e.NaturalRemedies, &e.EnvironmentalFactors, &e.MindfulnessPractices} {
		if len(*set) == 0 {
			*set = nil
		}
	}
}

// counter counts labels and remembers the order they were first seen in
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// top returns the n most frequent labels; ties keep first-seen order
func (c *counter) top(n int) []string {
	labels := append([]string{}, c.order...)
	sort.SliceStable(labels, func(i, j int) bool {
		return c.counts[labels[i]] > c.counts[labels[j]]
	})
	return headOf(labels, n)
}

func headOf[T any](values []T, n int) []T {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func roundHalfUp(v float64) int {
	return int(v + 0.5)
}
