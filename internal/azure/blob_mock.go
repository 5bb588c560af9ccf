package azure

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MockBlobStorageClient is an in-memory BlobStorage for tests and local runs
type MockBlobStorageClient struct {
	Storage map[string][]byte
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMockBlobStorageClient creates a new mock blob storage client
func NewMockBlobStorageClient(logger *zap.Logger) *MockBlobStorageClient {
	return &MockBlobStorageClient{
		Storage: make(map[string][]byte),
		logger:  logger,
	}
}

// UploadBackup stores data under backups/ in memory
func (c *MockBlobStorageClient) UploadBackup(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	return c.put(backupBlobName(filename), data), nil
}

// DownloadBackup returns a stored backup
func (c *MockBlobStorageClient) DownloadBackup(ctx context.Context, blobName string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name := backupBlobName(blobName)
	data, ok := c.Storage[name]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", name)
	}
	return append([]byte(nil), data...), nil
}

// UploadReport stores data under reports/ in memory
func (c *MockBlobStorageClient) UploadReport(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	return c.put(reportPrefix+filename, data), nil
}

func (c *MockBlobStorageClient) put(blobName string, data []byte) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Storage[blobName] = append([]byte(nil), data...)
	if c.logger != nil {
		c.logger.Info("mock: blob uploaded",
			zap.String("blob_name", blobName),
			zap.Int("size_bytes", len(data)),
		)
	}
	return blobName
}
