package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

func at(hour int) time.Time {
	return time.Date(2024, 5, 9, hour, 0, 0, 0, time.UTC)
}

func TestSymptomStore_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("prepends and fills id and timestamp", func(t *testing.T) {
		ts := newTestStores(t)
		_, err := ts.symptoms.Add(ctx, model.SymptomEntry{Symptom: "cough", Severity: 2})
		require.NoError(t, err)

		entry, err := ts.symptoms.Add(ctx, model.SymptomEntry{Symptom: "  headache ", Severity: 5, Triggers: []string{}})
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, testNow, entry.Timestamp)
		assert.Equal(t, "headache", entry.Symptom)
		assert.Nil(t, entry.Triggers)

		list, err := ts.symptoms.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, entry.ID, list[0].ID)
	})

	t.Run("validation", func(t *testing.T) {
		smoky := model.AirQuality("smoky")
		testCases := []struct {
			name  string
			entry model.SymptomEntry
		}{
			{name: "empty symptom", entry: model.SymptomEntry{Symptom: "   ", Severity: 3}},
			{name: "severity too low", entry: model.SymptomEntry{Symptom: "cough", Severity: 0}},
			{name: "severity too high", entry: model.SymptomEntry{Symptom: "cough", Severity: 11}},
			{name: "unknown air quality", entry: model.SymptomEntry{Symptom: "cough", Severity: 3, AirQuality: &smoky}},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ts := newTestStores(t)
				_, err := ts.symptoms.Add(ctx, tc.entry)
				assert.ErrorIs(t, err, ErrInvalidSymptom)

				list, err := ts.symptoms.List(ctx, 0)
				require.NoError(t, err)
				assert.Empty(t, list)
			})
		}
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		store := &failingPutStore{DocumentStore: repository.NewMemoryStore(zap.NewNop())}
		symptoms := NewSymptomStore(store, zap.NewNop())
		_, err := symptoms.Add(ctx, model.SymptomEntry{Symptom: "cough", Severity: 2})
		assert.Error(t, err)
	})
}

func TestSymptomStore_ListRecentByType(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	for _, e := range []model.SymptomEntry{
		{Symptom: "Headache", Severity: 4, Timestamp: testNow.AddDate(0, 0, -10)},
		{Symptom: "nausea", Severity: 3, Timestamp: testNow.AddDate(0, 0, -2)},
		{Symptom: "tension headache", Severity: 6, Timestamp: testNow.Add(-time.Hour)},
	} {
		_, err := ts.symptoms.Add(ctx, e)
		require.NoError(t, err)
	}

	limited, err := ts.symptoms.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "tension headache", limited[0].Symptom)

	recent, err := ts.symptoms.Recent(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	headaches, err := ts.symptoms.ByType(ctx, "HEADACHE")
	require.NoError(t, err)
	assert.Len(t, headaches, 2)
}

func TestSymptomStore_ClearAndImportReplace(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	_, err := ts.symptoms.Add(ctx, model.SymptomEntry{Symptom: "cough", Severity: 2})
	require.NoError(t, err)

	require.NoError(t, ts.symptoms.ClearAll(ctx))
	list, err := ts.symptoms.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = ts.symptoms.Add(ctx, model.SymptomEntry{Symptom: "fever", Severity: 7})
	require.NoError(t, err)

	replacement := []model.SymptomEntry{
		{ID: "b", Symptom: "rash", Severity: 3, Timestamp: at(10)},
		{ID: "a", Symptom: "itching", Severity: 2, Timestamp: at(9)},
	}
	require.NoError(t, ts.symptoms.ImportReplace(ctx, replacement))

	list, err = ts.symptoms.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestSymptomStore_MalformedDocumentReadsEmpty(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)
	require.NoError(t, ts.store.Put(ctx, symptomsKey, []byte("{not json")))

	list, err := ts.symptoms.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSymptomStore_AnalyzePatterns(t *testing.T) {
	ctx := context.Background()

	t.Run("empty log", func(t *testing.T) {
		patterns, err := newTestStores(t).symptoms.AnalyzePatterns(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.SymptomPatterns{CommonSymptoms: []string{}, FrequentTriggers: []string{}, TimePatterns: []string{}}, patterns)
	})

	t.Run("morning dominance", func(t *testing.T) {
		ts := newTestStores(t)
		entries := []model.SymptomEntry{
			{Symptom: "headache", Severity: 5, Timestamp: at(7), Triggers: []string{"stress"}},
			{Symptom: "headache", Severity: 6, Timestamp: at(8), Triggers: []string{"stress", "screen"}},
			{Symptom: "nausea", Severity: 2, Timestamp: at(9)},
			{Symptom: "fatigue", Severity: 4, Timestamp: at(20), Triggers: []string{"screen", "work"}},
		}
		require.NoError(t, ts.symptoms.ImportReplace(ctx, entries))

		patterns, err := ts.symptoms.AnalyzePatterns(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Morning symptoms are common"}, patterns.TimePatterns)
		assert.Equal(t, []string{"headache", "nausea", "fatigue"}, patterns.CommonSymptoms)
		assert.Equal(t, []string{"stress", "screen", "work"}, patterns.FrequentTriggers)
		// 17/4 = 4.25
		assert.Equal(t, 4, patterns.AverageSeverity)
	})

	t.Run("average rounds half up", func(t *testing.T) {
		ts := newTestStores(t)
		require.NoError(t, ts.symptoms.ImportReplace(ctx, []model.SymptomEntry{
			{Symptom: "a", Severity: 4, Timestamp: at(13)},
			{Symptom: "b", Severity: 5, Timestamp: at(14)},
		}))
		patterns, err := ts.symptoms.AnalyzePatterns(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, patterns.AverageSeverity)
		assert.Equal(t, []string{"Afternoon symptoms are frequent"}, patterns.TimePatterns)
	})
}

func TestSymptomStore_SummaryForChat(t *testing.T) {
	ctx := context.Background()
	ts := newTestStores(t)

	summary, err := ts.symptoms.SummaryForChat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No recent symptoms logged in the tracker.", summary)

	_, err = ts.symptoms.Add(ctx, model.SymptomEntry{Symptom: "headache", Severity: 6, Timestamp: at(8), Triggers: []string{"stress"}})
	require.NoError(t, err)

	summary, err = ts.symptoms.SummaryForChat(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(summary, "**Recent Symptom Summary (Last 7 days):**\n\n"))
	assert.Contains(t, summary, "• **Total entries:** 1\n")
	assert.Contains(t, summary, "• **Average severity:** 6/10\n")
	assert.Contains(t, summary, "• **Common triggers:** stress\n")
	assert.Contains(t, summary, "1. headache (6/10) - 2024-05-09\n")
}

func TestSymptomStore_AddListProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("added entry is listed first", prop.ForAll(
		func(symptom string, severity int) bool {
			ctx := context.Background()
			symptoms := NewSymptomStore(repository.NewMemoryStore(zap.NewNop()), zap.NewNop())
			if _, err := symptoms.Add(ctx, model.SymptomEntry{Symptom: "baseline", Severity: 1}); err != nil {
				return false
			}
			entry, err := symptoms.Add(ctx, model.SymptomEntry{Symptom: symptom, Severity: severity})
			if err != nil {
				return false
			}
			list, err := symptoms.List(ctx, 0)
			return err == nil && len(list) == 2 && list[0].ID == entry.ID
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

type failingPutStore struct {
	repository.DocumentStore
}

func (failingPutStore) Put(ctx context.Context, key string, value []byte) error {
	return assert.AnError
}
