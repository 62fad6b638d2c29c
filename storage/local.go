package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// reservedNames are placeholder entries excluded from listings and stats.
var reservedNames = map[string]bool{
	".gitkeep": true,
}

// LocalClient implements BlobStore on a flat local directory.
type LocalClient struct {
	basePath string
}

// NewLocalClient creates a new local storage client
func NewLocalClient(basePath string) (*LocalClient, error) {
	if basePath == "" {
		basePath = "./uploads"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %v", err)
	}

	return &LocalClient{basePath: basePath}, nil
}

// resolve joins the key against the base path, refusing anything that
// would escape the upload directory.
func (lc *LocalClient) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return "", NewStorageError("local", "INVALID_KEY", "invalid blob name", key)
	}
	return filepath.Join(lc.basePath, key), nil
}

// Upload saves data to the local file system
func (lc *LocalClient) Upload(key string, data []byte) error {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// UploadStream saves data from a stream to the local file system
func (lc *LocalClient) UploadStream(key string, reader io.Reader, size int64) error {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		// A torn write must not leave a partial blob behind.
		os.Remove(fullPath)
		return err
	}
	return nil
}

// Download reads a blob into memory
func (lc *LocalClient) Download(key string) ([]byte, error) {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

// DownloadStream returns a reader for the blob
func (lc *LocalClient) DownloadStream(key string) (io.ReadCloser, error) {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, ErrBlobNotFound
	}
	return file, err
}

// Delete removes a blob; deleting a missing blob is not an error
func (lc *LocalClient) Delete(key string) error {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Exists checks if a blob exists
func (lc *LocalClient) Exists(key string) (bool, error) {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSize returns the size of a blob
func (lc *LocalClient) GetSize(key string) (int64, error) {
	fullPath, err := lc.resolve(key)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return 0, ErrBlobNotFound
	}
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// List returns every regular file in the upload directory, excluding
// reserved placeholder names.
func (lc *LocalClient) List() ([]BlobInfo, error) {
	entries, err := os.ReadDir(lc.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %v", err)
	}

	var blobs []BlobInfo
	for _, entry := range entries {
		if entry.IsDir() || reservedNames[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Entry vanished between readdir and stat; a concurrent
			// delete is expected here.
			continue
		}
		blobs = append(blobs, BlobInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Created:  info.ModTime(),
			Modified: info.ModTime(),
		})
	}
	return blobs, nil
}

// GetStats returns storage statistics
func (lc *LocalClient) GetStats() (*StorageStats, error) {
	blobs, err := lc.List()
	if err != nil {
		return nil, err
	}

	stats := &StorageStats{}
	for _, blob := range blobs {
		stats.TotalFiles++
		stats.TotalSize += blob.Size
	}
	return stats, nil
}

// GetProviderInfo returns provider metadata
func (lc *LocalClient) GetProviderInfo() *ProviderInfo {
	return &ProviderInfo{
		Name:     "local",
		Type:     "local",
		Region:   "local",
		Endpoint: lc.basePath,
		Metadata: map[string]string{
			"base_path": lc.basePath,
		},
	}
}

// HealthCheck verifies local storage is accessible
func (lc *LocalClient) HealthCheck() error {
	testFile := filepath.Join(lc.basePath, ".health_check")

	if err := os.WriteFile(testFile, []byte("health_check"), 0644); err != nil {
		return fmt.Errorf("local storage write test failed: %v", err)
	}

	if _, err := os.ReadFile(testFile); err != nil {
		return fmt.Errorf("local storage read test failed: %v", err)
	}

	os.Remove(testFile)

	return nil
}
