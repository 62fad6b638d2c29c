package storage

import (
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned when no blob exists under the requested name.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the common interface for blob storage backends. Names are
// flat; there is no directory hierarchy.
type BlobStore interface {
	// Basic blob operations
	Upload(key string, data []byte) error
	UploadStream(key string, reader io.Reader, size int64) error
	Download(key string) ([]byte, error)
	DownloadStream(key string) (io.ReadCloser, error)
	Delete(key string) error
	Exists(key string) (bool, error)
	GetSize(key string) (int64, error)

	// Listing and stats
	List() ([]BlobInfo, error)
	GetStats() (*StorageStats, error)

	// Provider info
	GetProviderInfo() *ProviderInfo
	HealthCheck() error
}

// BlobInfo describes one stored blob in a listing.
type BlobInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// ProviderInfo contains information about the storage provider
type ProviderInfo struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Region   string            `json:"region"`
	Endpoint string            `json:"endpoint"`
	Metadata map[string]string `json:"metadata"`
}

// StorageStats contains storage usage statistics
type StorageStats struct {
	TotalFiles int64 `json:"total_files"`
	TotalSize  int64 `json:"total_size"`
}

// StorageError represents storage-specific errors
type StorageError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Key      string `json:"key,omitempty"`
}

func (e *StorageError) Error() string {
	return e.Message
}

// NewStorageError creates a new storage error
func NewStorageError(provider, code, message, key string) *StorageError {
	return &StorageError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Key:      key,
	}
}
