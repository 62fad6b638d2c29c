package services

import (
	"context"
	"testing"
	"time"

	"sharebin/models"
	"sharebin/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestBuildListing(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	limit := 3

	blobs := []storage.BlobInfo{
		{Name: "public_1700000000000.txt", Size: 10, Created: created, Modified: created},
		{Name: "hidden_1700000000000.pdf", Size: 20, Created: created, Modified: created},
		{Name: "legacy_1700000000000.jpg", Size: 30, Created: created, Modified: created},
	}
	records := map[string]*models.FileRecord{
		"public_1700000000000.txt": {
			StoredName:          "public_1700000000000.txt",
			DisplayName:         "public.txt",
			ContentType:         "text/plain",
			CreatedAt:           created,
			IsPasswordProtected: true,
			ViewLimit:           &limit,
			ViewCount:           1,
			DownloadCount:       7,
		},
		"hidden_1700000000000.pdf": {
			StoredName:  "hidden_1700000000000.pdf",
			DisplayName: "hidden.pdf",
			IsHidden:    true,
			HiddenToken: strptr("tok123"),
			CreatedAt:   created,
		},
	}

	t.Run("anonymous sees only public entries", func(t *testing.T) {
		entries := BuildListing(blobs, records, false, false)
		require.Len(t, entries, 2)

		byName := map[string]models.ListingEntry{}
		for _, entry := range entries {
			byName[entry.Name] = entry
		}

		public := byName["public_1700000000000.txt"]
		assert.Equal(t, "public.txt", public.OriginalName)
		assert.Equal(t, "text/plain", public.Type)
		assert.True(t, public.IsPasswordProtected)
		assert.Equal(t, 3, *public.ViewLimit)
		assert.Equal(t, 1, public.ViewCount)
		assert.Equal(t, 7, public.Downloads)
		assert.Nil(t, public.HiddenToken)

		legacy := byName["legacy_1700000000000.jpg"]
		assert.Equal(t, "legacy.jpg", legacy.OriginalName)
		assert.Equal(t, "image/jpeg", legacy.Type)
		assert.False(t, legacy.IsHidden)
		assert.False(t, legacy.IsPasswordProtected)
	})

	t.Run("admin without hidden flag sees only public entries", func(t *testing.T) {
		entries := BuildListing(blobs, records, true, false)
		assert.Len(t, entries, 2)
		for _, entry := range entries {
			assert.False(t, entry.IsHidden)
		}
	})

	t.Run("admin with hidden flag sees everything", func(t *testing.T) {
		entries := BuildListing(blobs, records, true, true)
		require.Len(t, entries, 3)

		var hidden *models.ListingEntry
		for i := range entries {
			if entries[i].Name == "hidden_1700000000000.pdf" {
				hidden = &entries[i]
			}
		}
		require.NotNil(t, hidden)
		assert.True(t, hidden.IsHidden)
		require.NotNil(t, hidden.HiddenToken)
		assert.Equal(t, "tok123", *hidden.HiddenToken)
	})
}

func TestGetListingHiddenRequiresAdmin(t *testing.T) {
	fs, _, _ := newTestService(t)

	_, err := fs.GetListing(context.Background(), false, true)
	assert.ErrorIs(t, err, ErrHiddenListingForbidden)
}

func TestGetListingJoinsRecords(t *testing.T) {
	fs, _, _ := newTestService(t)
	ctx := context.Background()

	uploadOne(t, fs, "visible.txt", []byte("aa"), nil)
	_, err := fs.Upload(ctx,
		fileHeaders(t, map[string][]byte{"stealth.txt": []byte("bb")}),
		&UploadOptions{IsHidden: true})
	require.NoError(t, err)

	entries, err := fs.GetListing(ctx, false, false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible.txt", entries[0].OriginalName)

	entries, err = fs.GetListing(ctx, true, true)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
