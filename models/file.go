package models

import (
	"time"
)

// FileRecord is the metadata row for one stored blob, keyed by StoredName.
// A blob may exist without a record (legacy upload); such files are served
// as public with no restrictions.
type FileRecord struct {
	StoredName          string     `bson:"stored_name" json:"name"`
	DisplayName         string     `bson:"display_name" json:"originalName"`
	SizeBytes           int64      `bson:"size_bytes" json:"size"`
	ContentType         string     `bson:"content_type" json:"type"`
	CreatedAt           time.Time  `bson:"created_at" json:"created"`
	LastAccessedAt      *time.Time `bson:"last_accessed_at,omitempty" json:"lastAccessed,omitempty"`
	IsHidden            bool       `bson:"is_hidden" json:"isHidden"`
	HiddenToken         *string    `bson:"hidden_token,omitempty" json:"hiddenToken,omitempty"`
	PasswordHash        *string    `bson:"password_hash,omitempty" json:"-"`
	IsPasswordProtected bool       `bson:"is_password_protected" json:"isPasswordProtected"`
	ViewLimit           *int       `bson:"view_limit,omitempty" json:"viewLimit"`
	ViewCount           int        `bson:"view_count" json:"viewCount"`
	DownloadCount       int        `bson:"download_count" json:"downloads"`
	CreatedBy           string     `bson:"created_by" json:"-"`
}

// ViewLimitReached reports whether the record is eligible for the
// view-limit deletion. A nil ViewLimit means unlimited views.
func (r *FileRecord) ViewLimitReached() bool {
	return r.ViewLimit != nil && r.ViewCount >= *r.ViewLimit
}

// ListingEntry is the client-visible projection of one stored file.
// HiddenToken is only populated for admin callers.
type ListingEntry struct {
	Name                string     `json:"name"`
	OriginalName        string     `json:"originalName"`
	Size                int64      `json:"size"`
	Type                string     `json:"type"`
	Created             time.Time  `json:"created"`
	Modified            time.Time  `json:"modified"`
	LastAccessed        *time.Time `json:"lastAccessed,omitempty"`
	IsHidden            bool       `json:"isHidden"`
	HiddenToken         *string    `json:"hiddenToken,omitempty"`
	IsPasswordProtected bool       `json:"isPasswordProtected"`
	ViewLimit           *int       `json:"viewLimit"`
	ViewCount           int        `json:"viewCount"`
	Downloads           int        `json:"downloads"`
}

// UploadedFile describes one successfully stored file in an upload response.
type UploadedFile struct {
	OriginalName string  `json:"originalName"`
	Filename     string  `json:"filename"`
	Size         int64   `json:"size"`
	Type         string  `json:"type"`
	UploadTime   string  `json:"uploadTime"`
	IsHidden     bool    `json:"isHidden"`
	HiddenToken  *string `json:"hiddenToken,omitempty"`
	ViewLimit    *int    `json:"viewLimit,omitempty"`
}

// StatsFileEntry is one row of the /api/stats file breakdown.
type StatsFileEntry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// StorageStatsResponse is the /api/stats payload.
type StorageStatsResponse struct {
	TotalFiles  int              `json:"totalFiles"`
	TotalSize   int64            `json:"totalSize"`
	AverageSize float64          `json:"averageSize"`
	Files       []StatsFileEntry `json:"files"`
}

// ShareLink is the generate-share-link payload. SuggestedPassword is a
// convenience value only; it is never applied unless the admin sets it.
type ShareLink struct {
	Name              string  `json:"name"`
	HiddenToken       string  `json:"hiddenToken"`
	ShareURL          string  `json:"shareUrl"`
	SuggestedPassword *string `json:"suggestedPassword,omitempty"`
}
