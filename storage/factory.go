package storage

import (
	"fmt"

	"sharebin/config"
)

// NewStorageClient creates the blob store selected by configuration.
func NewStorageClient(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageProvider {
	case "local":
		return NewLocalClient(cfg.UploadPath)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		return NewS3Client(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}
}
