package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAndFinalize(t *testing.T, result *DownloadResult) []byte {
	t.Helper()
	data, err := io.ReadAll(result.Body)
	require.NoError(t, err)
	require.NoError(t, result.Body.Close())
	result.Finalize()
	return data
}

func TestDownloadPublicFile(t *testing.T) {
	fs, records, _ := newTestService(t)
	ctx := context.Background()

	stored := uploadOne(t, fs, "open.txt", []byte("public content"), nil)

	result, err := fs.Download(ctx, stored, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("public content"), readAndFinalize(t, result))
	assert.Equal(t, int64(14), result.Size)
	assert.Equal(t, stored, result.FileName)

	record, err := records.Get(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, 1, record.ViewCount)
	assert.Equal(t, 1, record.DownloadCount)
	assert.NotNil(t, record.LastAccessedAt)
}

func TestDownloadMissingFile(t *testing.T) {
	fs, _, _ := newTestService(t)

	_, err := fs.Download(context.Background(), "nope_1700000000000.txt", "", "", false)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDownloadHiddenFile(t *testing.T) {
	fs, _, _ := newTestService(t)
	ctx := context.Background()

	response, err := fs.Upload(ctx,
		fileHeaders(t, map[string][]byte{"secret.txt": []byte("hidden content")}),
		&UploadOptions{IsHidden: true})
	require.NoError(t, err)
	stored := response.Files[0].Filename
	token := *response.Files[0].HiddenToken

	_, err = fs.Download(ctx, stored, "", "", false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = fs.Download(ctx, stored, "wrong-token", "", false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	result, err := fs.Download(ctx, stored, token, "", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("hidden content"), readAndFinalize(t, result))

	// Admins bypass the token gate.
	result, err = fs.Download(ctx, stored, "", "", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("hidden content"), readAndFinalize(t, result))
}

func TestDownloadPasswordProtectedFile(t *testing.T) {
	fs, _, _ := newTestService(t)
	ctx := context.Background()

	stored := uploadOne(t, fs, "locked.txt", []byte("locked content"), &UploadOptions{Password: "hunter2"})

	_, err := fs.Download(ctx, stored, "", "", false)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = fs.Download(ctx, stored, "", "wrong", false)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	result, err := fs.Download(ctx, stored, "", "hunter2", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("locked content"), readAndFinalize(t, result))
}

func TestDownloadHiddenAndPasswordProtected(t *testing.T) {
	fs, _, _ := newTestService(t)
	ctx := context.Background()

	response, err := fs.Upload(ctx,
		fileHeaders(t, map[string][]byte{"vault.txt": []byte("x")}),
		&UploadOptions{IsHidden: true, Password: "pw"})
	require.NoError(t, err)
	stored := response.Files[0].Filename
	token := *response.Files[0].HiddenToken

	// Token alone is not enough.
	_, err = fs.Download(ctx, stored, token, "", false)
	assert.ErrorIs(t, err, ErrPasswordRequired)

	// Password alone is not enough either.
	_, err = fs.Download(ctx, stored, "", "pw", false)
	assert.ErrorIs(t, err, ErrInvalidToken)

	result, err := fs.Download(ctx, stored, token, "pw", false)
	require.NoError(t, err)
	readAndFinalize(t, result)
}

func TestDownloadLegacyBlobWithoutRecord(t *testing.T) {
	fs, _, blobs := newTestService(t)
	ctx := context.Background()

	require.NoError(t, blobs.Upload("legacy_1700000000000.txt", []byte("legacy content")))

	result, err := fs.Download(ctx, "legacy_1700000000000.txt", "", "", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy content"), readAndFinalize(t, result))
	assert.Equal(t, int64(14), result.Size)
	assert.Equal(t, "text/plain; charset=utf-8", result.ContentType)
}

func TestViewLimitSelfDestruct(t *testing.T) {
	fs, records, blobs := newTestService(t)
	ctx := context.Background()

	limit := 2
	stored := uploadOne(t, fs, "burn.txt", []byte("read twice"), &UploadOptions{ViewLimit: &limit})

	// First view: under the limit, nothing happens.
	result, err := fs.Download(ctx, stored, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("read twice"), readAndFinalize(t, result))

	exists, err := blobs.Exists(stored)
	require.NoError(t, err)
	assert.True(t, exists)

	// Second view: the limit is reached, but the caller still gets the
	// full content before the file is removed.
	result, err = fs.Download(ctx, stored, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("read twice"), readAndFinalize(t, result))

	exists, err = blobs.Exists(stored)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = records.Get(ctx, stored)
	assert.Error(t, err)

	_, err = fs.Download(ctx, stored, "", "", false)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestViewLimitConcurrentDownloads(t *testing.T) {
	fs, records, blobs := newTestService(t)
	ctx := context.Background()

	limit := 1
	stored := uploadOne(t, fs, "race.txt", []byte("contested"), &UploadOptions{ViewLimit: &limit})

	const workers = 8
	var wg sync.WaitGroup
	successes := make(chan []byte, workers)
	failures := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fs.Download(ctx, stored, "", "", false)
			if err != nil {
				failures <- err
				return
			}
			data, err := io.ReadAll(result.Body)
			result.Body.Close()
			if err != nil {
				failures <- err
				return
			}
			result.Finalize()
			successes <- data
		}()
	}
	wg.Wait()
	close(successes)
	close(failures)

	// At least the first admitted reader must get the full content, and
	// every admitted reader streams it intact.
	assert.NotEmpty(t, successes)
	for data := range successes {
		assert.Equal(t, []byte("contested"), data)
	}
	for err := range failures {
		assert.ErrorIs(t, err, ErrFileNotFound)
	}

	// The file is gone exactly once: no blob, no record.
	exists, err := blobs.Exists(stored)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = records.Get(ctx, stored)
	assert.Error(t, err)
}

func TestResetViewsRearmsViewLimit(t *testing.T) {
	fs, _, blobs := newTestService(t)
	ctx := context.Background()

	limit := 1
	stored := uploadOne(t, fs, "rearm.txt", []byte("x"), &UploadOptions{ViewLimit: &limit})

	result, err := fs.Download(ctx, stored, "", "", false)
	require.NoError(t, err)

	// Reset before the deletion hook runs: the counter is back under the
	// limit, so the guarded delete must not fire.
	require.NoError(t, fs.ResetViews(ctx, stored))
	readAndFinalize(t, result)

	exists, err := blobs.Exists(stored)
	require.NoError(t, err)
	assert.True(t, exists)
}
