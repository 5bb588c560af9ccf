package azure

import (
	"context"
)

// BlobStorage stores export backups and generated reports
type BlobStorage interface {
	UploadBackup(ctx context.Context, filename string, data []byte) (string, error)
	DownloadBackup(ctx context.Context, blobName string) ([]byte, error)
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
}

var _ BlobStorage = (*BlobStorageClient)(nil)
var _ BlobStorage = (*MockBlobStorageClient)(nil)
