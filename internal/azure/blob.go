package azure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"go.uber.org/zap"
)

const (
	backupPrefix = "backups/"
	reportPrefix = "reports/"
)

// BlobStorageClient wraps the Azure Blob Storage SDK for backup and report files
type BlobStorageClient struct {
	client        *azblob.Client
	containerName string
	logger        *zap.Logger
}

// NewBlobStorageClient creates a new Azure Blob Storage client
func NewBlobStorageClient(accountName, accountKey, containerName string, logger *zap.Logger) (*BlobStorageClient, error) {
	if accountName == "" || accountKey == "" || containerName == "" {
		return nil, fmt.Errorf("accountName, accountKey, and containerName are required")
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobStorageClient{
		client:        client,
		containerName: containerName,
		logger:        logger,
	}, nil
}

// UploadBackup stores an export document under backups/
func (c *BlobStorageClient) UploadBackup(ctx context.Context, filename string, data []byte) (string, error) {
	return c.upload(ctx, backupBlobName(filename), "application/json", data)
}

// DownloadBackup fetches a stored export document. A bare filename is
// resolved under backups/.
func (c *BlobStorageClient) DownloadBackup(ctx context.Context, blobName string) ([]byte, error) {
	return c.download(ctx, backupBlobName(blobName))
}

// UploadReport stores a generated PDF under reports/
func (c *BlobStorageClient) UploadReport(ctx context.Context, filename string, data []byte) (string, error) {
	return c.upload(ctx, reportPrefix+filename, "application/pdf", data)
}

func (c *BlobStorageClient) upload(ctx context.Context, blobName, contentType string, data []byte) (string, error) {
	if blobName == backupPrefix || blobName == reportPrefix {
		return "", fmt.Errorf("filename is required")
	}

	c.logger.Info("uploading blob",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)

	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)
	_, err := blobClient.UploadBuffer(ctx, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr(contentType),
		},
	})
	if err != nil {
		c.logger.Error("failed to upload blob",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload %s: %w", blobName, err)
	}

	c.logger.Info("blob uploaded", zap.String("blob_name", blobName))
	return blobName, nil
}

func (c *BlobStorageClient) download(ctx context.Context, blobName string) ([]byte, error) {
	blobClient := c.client.ServiceClient().NewContainerClient(c.containerName).NewBlockBlobClient(blobName)

	resp, err := blobClient.DownloadStream(ctx, nil)
	if err != nil {
		c.logger.Error("failed to download blob",
			zap.String("blob_name", blobName),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download %s: %w", blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", blobName, err)
	}

	c.logger.Info("blob downloaded",
		zap.String("blob_name", blobName),
		zap.Int("size_bytes", len(data)),
	)
	return data, nil
}

func backupBlobName(name string) string {
	if strings.HasPrefix(name, backupPrefix) {
		return name
	}
	return backupPrefix + name
}

func toPtr(s string) *string {
	return &s
}
