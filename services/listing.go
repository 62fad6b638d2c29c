package services

import (
	"context"

	"sharebin/models"
	"sharebin/storage"
	"sharebin/utils"
)

// GetListing joins directory entries with metadata records into the
// client-visible listing. Requesting hidden entries without admin rights
// is a hard denial, not a silent filter.
func (fs *FileService) GetListing(ctx context.Context, isAdmin, showHidden bool) ([]models.ListingEntry, error) {
	if showHidden && !isAdmin {
		return nil, ErrHiddenListingForbidden
	}

	blobs, err := fs.blobs.List()
	if err != nil {
		return nil, err
	}

	recordsByName := make(map[string]*models.FileRecord)
	records, err := fs.records.List(ctx)
	if err != nil {
		// Degrade to default public metadata rather than failing the
		// whole listing.
		fs.log.WithField("error", err.Error()).Warn("metadata lookup failed; listing without records")
	} else {
		for i := range records {
			recordsByName[records[i].StoredName] = &records[i]
		}
	}

	return BuildListing(blobs, recordsByName, isAdmin, showHidden), nil
}

// BuildListing projects blob entries through their metadata records.
// Hidden entries appear only for admins that asked for them, and hidden
// tokens are never emitted to non-admin callers. Entries with no record
// get public defaults.
func BuildListing(blobs []storage.BlobInfo, records map[string]*models.FileRecord, isAdmin, showHidden bool) []models.ListingEntry {
	entries := make([]models.ListingEntry, 0, len(blobs))

	for _, blob := range blobs {
		entry := models.ListingEntry{
			Name:         blob.Name,
			OriginalName: utils.DisplayNameFromStored(blob.Name),
			Size:         blob.Size,
			Type:         utils.DetectContentType(blob.Name),
			Created:      blob.Created,
			Modified:     blob.Modified,
		}

		if record, ok := records[blob.Name]; ok {
			if record.IsHidden && !(isAdmin && showHidden) {
				continue
			}

			entry.OriginalName = record.DisplayName
			if record.ContentType != "" {
				entry.Type = record.ContentType
			}
			entry.Created = record.CreatedAt
			entry.LastAccessed = record.LastAccessedAt
			entry.IsHidden = record.IsHidden
			entry.IsPasswordProtected = record.IsPasswordProtected
			entry.ViewLimit = record.ViewLimit
			entry.ViewCount = record.ViewCount
			entry.Downloads = record.DownloadCount

			if isAdmin {
				entry.HiddenToken = record.HiddenToken
			}
		}

		entries = append(entries, entry)
	}

	return entries
}
