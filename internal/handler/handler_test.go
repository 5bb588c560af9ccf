package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/audit"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/azure"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

type staticModel struct {
	configured bool
	name       string
}

func (m staticModel) IsConfigured() bool { return m.configured }
func (m staticModel) ModelName() string  { return m.name }

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	router   *gin.Engine
	symptoms *service.SymptomStore
	chats    *service.ChatStore
	blobs    *azure.MockBlobStorageClient
}

// newTestServer wires the full API over an in-memory store. withStorage
// enables backup and report uploads.
func newTestServer(t *testing.T, withStorage bool) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := repository.NewMemoryStore(logger)
	symptoms := service.NewSymptomStore(store, logger)
	chats := service.NewChatStore(store, logger)
	remedies := service.NewRemedyService()
	responses := service.NewResponseService(nil, remedies, false, 0, logger)
	analyzer := service.NewAnalyzer()
	conversation := service.NewConversationService(analyzer, responses, symptoms, chats, service.NewEmergencyScreener(), 0, logger)
	insights := service.NewInsightsService(symptoms, logger)
	auditLogger := audit.NewLogger(store, logger)

	var (
		backup  service.BackupStorage
		reports service.ReportStorage
		blobs   *azure.MockBlobStorageClient
	)
	if withStorage {
		blobs = azure.NewMockBlobStorageClient(logger)
		backup, reports = blobs, blobs
	}

	exports := service.NewExportService(store, symptoms, chats, backup, auditLogger, logger)
	reportService := service.NewReportService(symptoms, insights, pdf.NewPDFGenerator(logger), reports, logger)

	doc, err := api.GetSwagger()
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestIDMiddleware(), middleware.OpenAPIValidationMiddleware(doc, logger))
	RegisterHandlers(router, Handlers{
		Health:    NewHealthHandler(store, responses, logger),
		Assistant: NewAssistantHandler(analyzer, remedies, responses, staticModel{name: "gpt-4o-mini"}, logger),
		Chat:      NewChatHandler(conversation, chats, logger),
		Symptom:   NewSymptomHandler(symptoms, insights, logger),
		Data:      NewDataHandler(exports, auditLogger, logger),
		Report:    NewReportHandler(reportService, logger),
	})

	return testServer{router: router, symptoms: symptoms, chats: chats, blobs: blobs}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, false)
	w := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[api.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, model.ResponseModeMock, resp.Mode)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewHealthHandler(failingPinger{}, service.NewResponseService(nil, service.NewRemedyService(), false, 0, zap.NewNop()), zap.NewNop())
	router.GET("/health", h.GetHealth)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	unhealthy := decode[api.HealthResponse](t, w)
	assert.Equal(t, "disconnected", unhealthy.Storage)
	assert.Equal(t, "connection refused", unhealthy.Error)
}

func TestAssistantHandler(t *testing.T) {
	srv := newTestServer(t, false)

	t.Run("analyze", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/analyze", `{"text":"I have a severe headache"}`)
		require.Equal(t, http.StatusOK, w.Code)
		input := decode[model.ProcessedInput](t, w)
		assert.Equal(t, model.IntentSymptom, input.Intent.Type)
		assert.Contains(t, input.Intent.Entities.Symptoms, "headache")
	})

	t.Run("recommend", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/recommend", `{"symptoms":["nausea"]}`)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[api.RecommendResponse](t, w)
		require.NotEmpty(t, resp.Recommendations)
		assert.Equal(t, "ginger", resp.Recommendations[0].Remedy.ID)
	})

	t.Run("recommend nothing", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/recommend", `{}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"recommendations":[]}`, w.Body.String())
	})

	t.Run("remedies", func(t *testing.T) {
		all := decode[api.RemediesResponse](t, srv.do(t, http.MethodGet, "/api/v1/remedies", ""))
		assert.Equal(t, 14, all.Count)

		herbs := decode[api.RemediesResponse](t, srv.do(t, http.MethodGet, "/api/v1/remedies?type=herb", ""))
		require.NotZero(t, herbs.Count)
		for _, r := range herbs.Remedies {
			assert.Equal(t, model.RemedyTypeHerb, r.Type)
		}

		found := decode[api.RemediesResponse](t, srv.do(t, http.MethodGet, "/api/v1/remedies?q=GINGER", ""))
		require.NotZero(t, found.Count)
		assert.Equal(t, "ginger", found.Remedies[0].ID)

		assert.Equal(t, http.StatusBadRequest, srv.do(t, http.MethodGet, "/api/v1/remedies?type=potion", "").Code)
	})

	t.Run("remedy by id", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/remedies/turmeric", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "turmeric", decode[model.Remedy](t, w).ID)

		w = srv.do(t, http.MethodGet, "/api/v1/remedies/unicorn", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decode[api.ErrorResponse](t, w).Code)
	})

	t.Run("ai status", func(t *testing.T) {
		resp := decode[api.AIStatusResponse](t, srv.do(t, http.MethodGet, "/api/v1/ai/status", ""))
		assert.Equal(t, api.AIStatusResponse{Mode: model.ResponseModeMock, Model: "gpt-4o-mini"}, resp)
	})
}

func TestChatHandler(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(t, http.MethodPost, "/api/v1/chat", `{"content":"I feel nausea"}`)
	require.Equal(t, http.StatusOK, w.Code)
	turn := decode[service.ChatTurn](t, w)
	assert.Equal(t, "I feel nausea", turn.UserMessage.Content)
	assert.NotEmpty(t, turn.AssistantMessage.Recommendations)
	require.NotNil(t, turn.FollowUpMessage)

	w = srv.do(t, http.MethodPost, "/api/v1/chat", `{"content":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/"+turn.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[model.ChatSession](t, w).Messages, 3)

	w = srv.do(t, http.MethodPost, "/api/v1/chat/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[service.ChatTurn](t, w).HistoryRequest)
}

func TestChatHandler_Stream(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(t, http.MethodPost, "/api/v1/chat/stream", `{"content":"hello there"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event:delta")
	assert.Contains(t, body, "event:done")
	assert.NotContains(t, body, "event:error")
	assert.Less(t, strings.Index(body, "event:delta"), strings.Index(body, "event:done"))

	sessions := decode[api.SessionsResponse](t, srv.do(t, http.MethodGet, "/api/v1/sessions", ""))
	require.Equal(t, 1, sessions.Count)
	assert.Equal(t, "hello there", sessions.Sessions[0].Title)
}

func TestChatHandler_LogSymptom(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(t, http.MethodPost, "/api/v1/chat/symptom", `{"symptom":"migraine","severity":7}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Symptom model.SymptomEntry `json:"symptom"`
		Turn    *service.ChatTurn  `json:"turn"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Symptom.ID)
	require.NotNil(t, resp.Turn)
	assert.True(t, strings.HasPrefix(resp.Turn.UserMessage.Content, "I just logged a symptom in my tracker:"))
}

func TestChatHandler_Sessions(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.ChatSession](t, w)
	assert.Equal(t, "New Chat", created.Title)

	current := decode[model.ChatSession](t, srv.do(t, http.MethodGet, "/api/v1/sessions/current", ""))
	assert.Equal(t, created.ID, current.ID)

	w = srv.do(t, http.MethodPut, "/api/v1/sessions/"+created.ID+"/title", `{"title":"Sleep"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sleep", decode[model.ChatSession](t, w).Title)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodPut, "/api/v1/sessions/missing/title", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/v1/sessions/missing", "").Code)

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodPut, "/api/v1/sessions/current", `{"id":"missing"}`).Code)
	pointer, err := srv.chats.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pointer)

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/sessions/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/v1/sessions/"+created.ID, "").Code)

	srv.do(t, http.MethodPost, "/api/v1/sessions", "")
	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/sessions", "").Code)
	assert.Zero(t, decode[api.SessionsResponse](t, srv.do(t, http.MethodGet, "/api/v1/sessions", "")).Count)
}

func TestSymptomHandler(t *testing.T) {
	srv := newTestServer(t, false)

	for _, body := range []string{
		`{"symptom":"headache","severity":6,"triggers":["stress"]}`,
		`{"symptom":"fatigue","severity":3}`,
		`{"symptom":"tension headache","severity":5}`,
	} {
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/v1/symptoms", body).Code)
	}

	all := decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms", ""))
	require.Equal(t, 3, all.Count)
	assert.Equal(t, "tension headache", all.Symptoms[0].Symptom)

	limited := decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms?limit=2", ""))
	assert.Equal(t, 2, limited.Count)

	headaches := decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms?type=HEADACHE", ""))
	assert.Equal(t, 2, headaches.Count)

	recent := decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms/recent?days=1", ""))
	assert.Equal(t, 3, recent.Count)

	patterns := decode[model.SymptomPatterns](t, srv.do(t, http.MethodGet, "/api/v1/symptoms/patterns", ""))
	assert.Equal(t, []string{"stress"}, patterns.FrequentTriggers)
	assert.Equal(t, 5, patterns.AverageSeverity)

	summary := decode[api.SymptomSummaryResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms/summary", ""))
	assert.True(t, strings.HasPrefix(summary.Summary, "**Recent Symptom Summary (Last 7 days):**"))

	insights := decode[service.HealthInsights](t, srv.do(t, http.MethodGet, "/api/v1/insights?days=30", ""))
	assert.Equal(t, "30 days", insights.Period)
	assert.Len(t, insights.TimeSeriesData, 30)

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/symptoms", "").Code)
	assert.Zero(t, decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms", "")).Count)
}

func TestSymptomHandler_Validation(t *testing.T) {
	srv := newTestServer(t, false)

	testCases := []struct {
		name string
		body string
	}{
		{name: "severity too high", body: `{"symptom":"headache","severity":11}`},
		{name: "missing symptom", body: `{"severity":3}`},
		{name: "unknown air quality", body: `{"symptom":"cough","severity":2,"airQuality":"hazy"}`},
		{name: "blank symptom", body: `{"symptom":" ","severity":2}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/v1/symptoms", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VALIDATION_ERROR", decode[api.ErrorResponse](t, w).Code)
		})
	}
}

func TestDataHandler_ExportImport(t *testing.T) {
	srv := newTestServer(t, false)

	srv.do(t, http.MethodPost, "/api/v1/symptoms", `{"symptom":"cough","severity":4}`)
	srv.do(t, http.MethodPost, "/api/v1/chat", `{"content":"hello"}`)

	stats := decode[model.ExportStats](t, srv.do(t, http.MethodGet, "/api/v1/export/stats", ""))
	assert.Equal(t, 1, stats.Symptoms)
	assert.Equal(t, 1, stats.Sessions)

	w := srv.do(t, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=healthwise-backup-")
	exported := w.Body.Bytes()

	assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, "/api/v1/data", "").Code)
	assert.Zero(t, decode[model.ExportStats](t, srv.do(t, http.MethodGet, "/api/v1/export/stats", "")).Symptoms)

	w = srv.do(t, http.MethodPost, "/api/v1/import", string(exported))
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[model.ImportResult](t, w)
	assert.True(t, result.Success)
	assert.Equal(t, &model.ImportStats{Symptoms: 1, Sessions: 1}, result.Stats)

	w = srv.do(t, http.MethodPost, "/api/v1/import", `{"version":"1.0.0","symptoms":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid file format. Please select a valid HealthWise backup file.", decode[model.ImportResult](t, w).Message)

	var logs struct {
		Entries []audit.AuditLog `json:"entries"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(srv.do(t, http.MethodGet, "/api/v1/audit?limit=2", "").Body.Bytes(), &logs))
	require.Equal(t, 2, logs.Count)
	assert.Equal(t, audit.OperationImport, logs.Entries[0].OperationType)
	assert.False(t, logs.Entries[0].Success)
}

func TestDataHandler_Backup(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		srv := newTestServer(t, false)
		w := srv.do(t, http.MethodPost, "/api/v1/backup", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "BACKUP_NOT_CONFIGURED", decode[api.ErrorResponse](t, w).Code)
	})

	t.Run("backup and restore", func(t *testing.T) {
		srv := newTestServer(t, true)
		srv.do(t, http.MethodPost, "/api/v1/symptoms", `{"symptom":"cough","severity":4}`)

		w := srv.do(t, http.MethodPost, "/api/v1/backup", "")
		require.Equal(t, http.StatusCreated, w.Code)
		stored := decode[api.StoredBlobResponse](t, w)
		assert.True(t, strings.HasPrefix(stored.BlobName, "backups/healthwise-backup-"))
		assert.Contains(t, srv.blobs.Storage, stored.BlobName)

		srv.do(t, http.MethodDelete, "/api/v1/symptoms", "")

		body, err := json.Marshal(api.RestoreRequest{BlobName: stored.BlobName})
		require.NoError(t, err)
		w = srv.do(t, http.MethodPost, "/api/v1/backup/restore", string(body))
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode[model.ImportResult](t, w).Success)
		assert.Equal(t, 1, decode[api.SymptomsResponse](t, srv.do(t, http.MethodGet, "/api/v1/symptoms", "")).Count)
	})
}

func TestReportHandler(t *testing.T) {
	srv := newTestServer(t, true)
	srv.do(t, http.MethodPost, "/api/v1/symptoms", `{"symptom":"headache","severity":6}`)

	w := srv.do(t, http.MethodGet, "/api/v1/reports/symptoms?days=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = srv.do(t, http.MethodPost, "/api/v1/reports/symptoms", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasPrefix(decode[api.StoredBlobResponse](t, w).BlobName, "reports/healthwise-symptom-report-"))

	unconfigured := newTestServer(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, unconfigured.do(t, http.MethodPost, "/api/v1/reports/symptoms", "").Code)
}

// Every rejected request carries an ErrorResponse with a code and message
func TestProperty_ErrorResponseStructure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	srv := newTestServer(t, false)

	type scenario struct {
		method string
		path   string
		body   string
		status int
	}
	scenarios := map[string]scenario{
		"invalid_json_analyze":    {http.MethodPost, "/api/v1/analyze", "{invalid json", http.StatusBadRequest},
		"missing_text":            {http.MethodPost, "/api/v1/analyze", `{}`, http.StatusBadRequest},
		"malformed_json_array":    {http.MethodPost, "/api/v1/recommend", `[1,2,3`, http.StatusBadRequest},
		"bad_severity_band":       {http.MethodPost, "/api/v1/recommend", `{"severity":"extreme"}`, http.StatusBadRequest},
		"empty_chat_message":      {http.MethodPost, "/api/v1/chat", `{"content":""}`, http.StatusBadRequest},
		"invalid_limit":           {http.MethodGet, "/api/v1/symptoms?limit=abc", "", http.StatusBadRequest},
		"unknown_session":         {http.MethodGet, "/api/v1/sessions/nope", "", http.StatusNotFound},
		"unknown_remedy":          {http.MethodGet, "/api/v1/remedies/nope", "", http.StatusNotFound},
		"backup_not_configured":   {http.MethodPost, "/api/v1/backup", "", http.StatusServiceUnavailable},
		"restore_without_name":    {http.MethodPost, "/api/v1/backup/restore", `{}`, http.StatusBadRequest},
		"title_missing_on_rename": {http.MethodPut, "/api/v1/sessions/x/title", `{}`, http.StatusBadRequest},
	}
	names := make([]interface{}, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}

	properties.Property("all error responses follow standard structure with code and message", prop.ForAll(
		func(name string) bool {
			sc := scenarios[name]
			w := srv.do(t, sc.method, sc.path, sc.body)
			if w.Code != sc.status {
				t.Logf("scenario %s: expected status %d, got %d (%s)", name, sc.status, w.Code, w.Body.String())
				return false
			}

			var resp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Logf("scenario %s: failed to parse error response: %v", name, err)
				return false
			}
			if resp.Code == "" || resp.Message == "" {
				t.Logf("scenario %s: code or message missing: %+v", name, resp)
				return false
			}
			return true
		},
		gen.OneConstOf(names...),
	))

	properties.TestingRun(t)
}
