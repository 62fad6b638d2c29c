package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *LocalClient {
	t.Helper()
	client, err := NewLocalClient(t.TempDir())
	require.NoError(t, err)
	return client
}

func TestLocalUploadDownloadRoundTrip(t *testing.T) {
	client := newTestClient(t)
	content := []byte("file sharing is caring")

	require.NoError(t, client.Upload("doc_1700000000000.txt", content))

	data, err := client.Download("doc_1700000000000.txt")
	require.NoError(t, err)
	assert.Equal(t, content, data)

	size, err := client.GetSize("doc_1700000000000.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	exists, err := client.Exists("doc_1700000000000.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalUploadStream(t *testing.T) {
	client := newTestClient(t)
	content := []byte("streamed content")

	require.NoError(t, client.UploadStream("stream.bin", bytes.NewReader(content), int64(len(content))))

	body, err := client.DownloadStream("stream.bin")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalMissingBlob(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Download("nope.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	_, err = client.DownloadStream("nope.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	_, err = client.GetSize("nope.txt")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	exists, err := client.Exists("nope.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalDeleteMissingIsNoop(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.Delete("never-existed.txt"))
}

func TestLocalDelete(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Upload("gone.txt", []byte("x")))
	require.NoError(t, client.Delete("gone.txt"))

	exists, err := client.Exists("gone.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalRejectsUnsafeKeys(t *testing.T) {
	client := newTestClient(t)

	for _, key := range []string{"", ".", "..", "../escape.txt", "a/b.txt", `a\b.txt`} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, client.Upload(key, []byte("x")))
			_, err := client.Download(key)
			assert.Error(t, err)
			assert.Error(t, client.Delete(key))
		})
	}
}

func TestLocalListSkipsReservedNames(t *testing.T) {
	dir := t.TempDir()
	client, err := NewLocalClient(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))
	require.NoError(t, client.Upload("a.txt", []byte("aa")))
	require.NoError(t, client.Upload("b.txt", []byte("bbbb")))

	blobs, err := client.List()
	require.NoError(t, err)
	require.Len(t, blobs, 2)

	names := []string{blobs[0].Name, blobs[1].Name}
	assert.Contains(t, names, "a.txt")
	assert.Contains(t, names, "b.txt")
}

func TestLocalGetStats(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Upload("a.txt", []byte("aa")))
	require.NoError(t, client.Upload("b.txt", []byte("bbbb")))

	stats, err := client.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalFiles)
	assert.Equal(t, int64(6), stats.TotalSize)
}

func TestLocalHealthCheck(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.HealthCheck())
}
