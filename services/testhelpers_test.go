package services

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"sharebin/config"
	"sharebin/database"
	"sharebin/models"
	"sharebin/storage"

	"github.com/stretchr/testify/require"
)

// memRecords is an in-memory RecordStore. Every mutation holds the lock
// for its full read-modify-write, matching the atomicity of the MongoDB
// implementation it stands in for.
type memRecords struct {
	mu      sync.Mutex
	records map[string]*models.FileRecord
}

func newMemRecords() *memRecords {
	return &memRecords{records: make(map[string]*models.FileRecord)}
}

func (m *memRecords) Get(_ context.Context, storedName string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return nil, database.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *memRecords) GetByToken(_ context.Context, token string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.HiddenToken != nil && *record.HiddenToken == token {
			clone := *record
			return &clone, nil
		}
	}
	return nil, database.ErrRecordNotFound
}

func (m *memRecords) List(_ context.Context) ([]models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]models.FileRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, *record)
	}
	return records, nil
}

func (m *memRecords) Insert(_ context.Context, record *models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.StoredName]; ok {
		return database.ErrRecordExists
	}
	clone := *record
	m.records[record.StoredName] = &clone
	return nil
}

func (m *memRecords) Delete(_ context.Context, storedName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, storedName)
	return nil
}

func (m *memRecords) RegisterView(_ context.Context, storedName string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return nil, database.ErrRecordNotFound
	}
	record.ViewCount++
	record.DownloadCount++
	now := time.Now()
	record.LastAccessedAt = &now
	clone := *record
	return &clone, nil
}

func (m *memRecords) ResetViews(_ context.Context, storedName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return database.ErrRecordNotFound
	}
	record.ViewCount = 0
	return nil
}

func (m *memRecords) SetHidden(_ context.Context, storedName string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return database.ErrRecordNotFound
	}
	if token != nil {
		record.IsHidden = true
		record.HiddenToken = token
	} else {
		record.IsHidden = false
		record.HiddenToken = nil
	}
	return nil
}

func (m *memRecords) SetPassword(_ context.Context, storedName string, passwordHash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return database.ErrRecordNotFound
	}
	record.PasswordHash = passwordHash
	record.IsPasswordProtected = passwordHash != nil
	return nil
}

func (m *memRecords) SetViewLimit(_ context.Context, storedName string, limit *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok {
		return database.ErrRecordNotFound
	}
	record.ViewLimit = limit
	return nil
}

func (m *memRecords) DeleteIfExhausted(_ context.Context, storedName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[storedName]
	if !ok || record.ViewLimit == nil || record.ViewCount < *record.ViewLimit {
		return false, nil
	}
	delete(m.records, storedName)
	return true, nil
}

func (m *memRecords) TokenInUse(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.HiddenToken != nil && *record.HiddenToken == token {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T) (*FileService, *memRecords, storage.BlobStore) {
	t.Helper()

	blobs, err := storage.NewLocalClient(t.TempDir())
	require.NoError(t, err)

	records := newMemRecords()
	cfg := &config.Config{
		MaxUploadSize:    10 << 20,
		AllowedFileTypes: []string{"jpg", "png", "pdf", "txt", "zip"},
		AppURL:           "http://localhost:8080",
	}

	fs := NewFileService(records, blobs, cfg)
	fs.log.SetOutput(io.Discard)
	return fs, records, blobs
}

// fileHeaders builds real multipart file headers the way an HTTP upload
// request would carry them.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["files"]
}

// uploadOne stores a single file and returns its stored name.
func uploadOne(t *testing.T, fs *FileService, name string, content []byte, opts *UploadOptions) string {
	t.Helper()

	if opts == nil {
		opts = &UploadOptions{}
	}
	response, err := fs.Upload(context.Background(), fileHeaders(t, map[string][]byte{name: content}), opts)
	require.NoError(t, err)
	require.Len(t, response.Files, 1)
	return response.Files[0].Filename
}
