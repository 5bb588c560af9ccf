package integration_tests

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/audit"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

type auditResponse struct {
	Entries []audit.AuditLog `json:"entries"`
	Count   int              `json:"count"`
}

// TestDataPortabilityIntegration exports, clears, restores and backs up a
// user's data and renders a report from it
func TestDataPortabilityIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, backend := range backends() {
		t.Run(backend.name, func(t *testing.T) {
			env := setupEnv(t, backend.storage(t))

			t.Log("Step 1: Seed symptoms and a chat")
			for _, entry := range []map[string]any{
				{"symptom": "headache", "severity": 4, "triggers": []string{"screen time"}},
				{"symptom": "fatigue", "severity": 3, "notes": "after a short night"},
			} {
				requireStatus(t, env.request(t, http.MethodPost, "/api/v1/symptoms", entry), http.StatusCreated)
			}
			requireStatus(t, env.request(t, http.MethodPost, "/api/v1/chat", map[string]any{"content": "I have a headache"}), http.StatusOK)

			w := env.request(t, http.MethodGet, "/api/v1/export/stats", nil)
			requireStatus(t, w, http.StatusOK)
			stats := decodeJSON[model.ExportStats](t, w)
			assert.Equal(t, model.ExportStats{Symptoms: 2, Sessions: 1, TotalMessages: 3}, stats)

			t.Log("Step 2: Export")
			w = env.request(t, http.MethodGet, "/api/v1/export", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Contains(t, w.Header().Get("Content-Disposition"), "healthwise-backup-")
			exported := bytes.Clone(w.Body.Bytes())
			doc := decodeJSON[model.ExportDocument](t, w)
			assert.Equal(t, "1.0.0", doc.Version)
			assert.Len(t, doc.Symptoms, 2)

			t.Log("Step 3: Clear everything")
			requireStatus(t, env.request(t, http.MethodDelete, "/api/v1/data", nil), http.StatusNoContent)
			w = env.request(t, http.MethodGet, "/api/v1/symptoms", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, 0, decodeJSON[api.SymptomsResponse](t, w).Count)

			t.Log("Step 4: Import the export back")
			w = env.requestRaw(t, http.MethodPost, "/api/v1/import", exported)
			requireStatus(t, w, http.StatusOK)
			result := decodeJSON[model.ImportResult](t, w)
			assert.True(t, result.Success)
			require.NotNil(t, result.Stats)
			assert.Equal(t, model.ImportStats{Symptoms: 2, Sessions: 1}, *result.Stats)

			w = env.request(t, http.MethodGet, "/api/v1/sessions", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, 1, decodeJSON[api.SessionsResponse](t, w).Count)

			t.Log("Step 5: A broken file leaves the data alone")
			w = env.requestRaw(t, http.MethodPost, "/api/v1/import", []byte(`{"version":"1.0","symptoms":{}}`))
			requireStatus(t, w, http.StatusBadRequest)
			assert.False(t, decodeJSON[model.ImportResult](t, w).Success)

			w = env.request(t, http.MethodGet, "/api/v1/export/stats", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, stats, decodeJSON[model.ExportStats](t, w))

			t.Log("Step 6: Backup and restore through blob storage")
			w = env.request(t, http.MethodPost, "/api/v1/backup", nil)
			requireStatus(t, w, http.StatusCreated)
			backup := decodeJSON[api.StoredBlobResponse](t, w)
			require.NotEmpty(t, backup.BlobName)

			requireStatus(t, env.request(t, http.MethodDelete, "/api/v1/symptoms", nil), http.StatusNoContent)

			w = env.request(t, http.MethodPost, "/api/v1/backup/restore", map[string]any{"blobName": backup.BlobName})
			requireStatus(t, w, http.StatusOK)
			assert.True(t, decodeJSON[model.ImportResult](t, w).Success)

			w = env.request(t, http.MethodGet, "/api/v1/symptoms", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, 2, decodeJSON[api.SymptomsResponse](t, w).Count)

			t.Log("Step 7: Reports")
			w = env.request(t, http.MethodGet, "/api/v1/reports/symptoms?days=30", nil)
			requireStatus(t, w, http.StatusOK)
			assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

			w = env.request(t, http.MethodPost, "/api/v1/reports/symptoms", nil)
			requireStatus(t, w, http.StatusCreated)
			assert.NotEmpty(t, decodeJSON[api.StoredBlobResponse](t, w).BlobName)

			t.Log("Step 8: Every data operation is audited")
			w = env.request(t, http.MethodGet, "/api/v1/audit?limit=4", nil)
			requireStatus(t, w, http.StatusOK)
			logs := decodeJSON[auditResponse](t, w)
			require.Equal(t, 4, logs.Count)
			assert.Equal(t, audit.OperationRestore, logs.Entries[0].OperationType)
			assert.Equal(t, backup.BlobName, logs.Entries[0].ResourceID)
			assert.Equal(t, audit.OperationImport, logs.Entries[1].OperationType)
			assert.True(t, logs.Entries[1].Success)
			assert.Equal(t, audit.OperationBackup, logs.Entries[2].OperationType)
			// the backup exports first
			assert.Equal(t, audit.OperationExport, logs.Entries[3].OperationType)
		})
	}
}
