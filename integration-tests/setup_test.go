package integration_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/app"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/azure"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/config"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
)

// testEncryptionKey is base64 for a 32 byte AES key
const testEncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

type backendCase struct {
	name    string
	storage func(t *testing.T) config.StorageConfig
}

// backends lists every store the flows run against. Postgres runs only when
// TEST_DATABASE_URL is set.
func backends() []backendCase {
	cases := []backendCase{
		{
			name:    "memory",
			storage: func(t *testing.T) config.StorageConfig { return config.StorageConfig{Backend: "memory"} },
		},
		{
			name: "sqlite",
			storage: func(t *testing.T) config.StorageConfig {
				return config.StorageConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "healthwise.db")}
			},
		},
		{
			name: "sqlite encrypted and cached",
			storage: func(t *testing.T) config.StorageConfig {
				return config.StorageConfig{
					Backend:       "sqlite",
					SQLitePath:    filepath.Join(t.TempDir(), "healthwise.db"),
					EncryptionKey: testEncryptionKey,
					CacheTTL:      5 * time.Minute,
				}
			},
		},
	}

	if dbURL := os.Getenv("TEST_DATABASE_URL"); dbURL != "" {
		cases = append(cases, backendCase{
			name: "postgres",
			storage: func(t *testing.T) config.StorageConfig {
				return config.StorageConfig{Backend: "postgres", DatabaseURL: dbURL, Table: "health_documents_it"}
			},
		})
	}
	return cases
}

type testEnv struct {
	router *gin.Engine
	app    *app.App
	blobs  azure.BlobStorage
}

// setupEnv opens the store, wires the full API and clears any data a
// previous run left behind
func setupEnv(t *testing.T, storage config.StorageConfig) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Environment: "test"},
		AI:      config.AIConfig{Model: "openai/gpt-4o-mini", Client: "openai-go", MaxTokens: 100},
		Storage: storage,
	}

	store, err := repository.Open(ctx, storage, logger)
	require.NoError(t, err, "Should be able to open the %s store", storage.Backend)

	blobs := setupBlobStorage(t, logger)
	a := app.NewWithStore(store, blobs, cfg, logger)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Exports.ClearAll(ctx))

	router, err := a.Router(cfg.Server)
	require.NoError(t, err)

	return &testEnv{router: router, app: a, blobs: blobs}
}

// setupBlobStorage uses the in-memory blob client unless USE_REAL_AZURE is set
func setupBlobStorage(t *testing.T, logger *zap.Logger) azure.BlobStorage {
	if os.Getenv("USE_REAL_AZURE") != "true" {
		return azure.NewMockBlobStorageClient(logger)
	}

	t.Log("Using real Azure blob storage")
	client, err := azure.NewBlobStorageClient(
		os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
		os.Getenv("AZURE_STORAGE_ACCOUNT_KEY"),
		os.Getenv("AZURE_STORAGE_BACKUP_CONTAINER"),
		logger,
	)
	require.NoError(t, err)
	return client
}

func (e *testEnv) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) requestRaw(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
