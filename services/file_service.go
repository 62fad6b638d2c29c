package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"sharebin/config"
	"sharebin/database"
	"sharebin/models"
	"sharebin/storage"
	"sharebin/utils"

	"github.com/sirupsen/logrus"
)

const (
	hiddenTokenBytes = 32 // 256 bits
	maxNameAttempts  = 5
	maxTokenAttempts = 5
	suggestedPassLen = 12
	defaultCreatedBy = "admin"
)

// FileService drives the access-control and lifecycle engine: who may
// read a stored file, when a view-limited file self-destructs, and how
// records are created and mutated.
type FileService struct {
	records RecordStore
	blobs   storage.BlobStore
	cfg     *config.Config
	log     *logrus.Logger
}

// NewFileService wires the service to its stores.
func NewFileService(records RecordStore, blobs storage.BlobStore, cfg *config.Config) *FileService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &FileService{
		records: records,
		blobs:   blobs,
		cfg:     cfg,
		log:     logger,
	}
}

// UploadOptions are the admin-supplied attributes for an upload batch.
type UploadOptions struct {
	IsHidden  bool
	ViewLimit *int
	Password  string
}

// Upload stores each multipart file and creates its metadata record. The
// record insert is best-effort: a blob without a record degrades to a
// public file with no restrictions, which stays servable.
func (fs *FileService) Upload(ctx context.Context, files []*multipart.FileHeader, opts *UploadOptions) (*models.UploadResponse, error) {
	response := &models.UploadResponse{}

	var passwordHash *string
	if opts.Password != "" {
		hash, err := utils.HashPassword(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		passwordHash = &hash
	}

	for _, header := range files {
		if header.Filename == "" {
			continue
		}

		displayName := utils.SanitizeFilename(header.Filename)
		if displayName == "" {
			response.Skipped = append(response.Skipped, models.SkippedFile{
				OriginalName: header.Filename,
				Reason:       "unusable filename",
			})
			continue
		}

		if !utils.IsAllowedFileType(displayName, fs.cfg.AllowedFileTypes) {
			response.Skipped = append(response.Skipped, models.SkippedFile{
				OriginalName: header.Filename,
				Reason:       "file type not allowed",
			})
			continue
		}

		if header.Size > fs.cfg.MaxUploadSize {
			response.Skipped = append(response.Skipped, models.SkippedFile{
				OriginalName: header.Filename,
				Reason:       "file too large",
			})
			continue
		}

		uploaded, err := fs.storeOne(ctx, header, displayName, opts, passwordHash)
		if err != nil {
			return nil, err
		}

		response.Files = append(response.Files, *uploaded)
		response.TotalSize += uploaded.Size
	}

	return response, nil
}

func (fs *FileService) storeOne(ctx context.Context, header *multipart.FileHeader, displayName string, opts *UploadOptions, passwordHash *string) (*models.UploadedFile, error) {
	storedName, err := fs.allocateStoredName(displayName)
	if err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %v", err)
	}
	defer src.Close()

	if err := fs.blobs.UploadStream(storedName, src, header.Size); err != nil {
		return nil, fmt.Errorf("failed to store blob: %v", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = utils.DetectContentType(storedName)
	}

	now := time.Now()
	record := &models.FileRecord{
		StoredName:          storedName,
		DisplayName:         displayName,
		SizeBytes:           header.Size,
		ContentType:         contentType,
		CreatedAt:           now,
		IsHidden:            opts.IsHidden,
		PasswordHash:        passwordHash,
		IsPasswordProtected: passwordHash != nil,
		ViewLimit:           opts.ViewLimit,
		CreatedBy:           defaultCreatedBy,
	}

	if opts.IsHidden {
		token, err := fs.newHiddenToken(ctx)
		if err != nil {
			return nil, err
		}
		record.HiddenToken = &token
	}

	if err := fs.records.Insert(ctx, record); err != nil {
		// The blob is already durable; serve it as a legacy public file
		// rather than failing the upload.
		fs.log.WithFields(logrus.Fields{
			"stored_name": storedName,
			"error":       err.Error(),
		}).Warn("file record insert failed; blob kept without metadata")
		record = nil
	}

	uploaded := &models.UploadedFile{
		OriginalName: header.Filename,
		Filename:     storedName,
		Size:         header.Size,
		Type:         contentType,
		UploadTime:   now.Format(time.RFC3339),
	}
	if record != nil {
		uploaded.IsHidden = record.IsHidden
		uploaded.HiddenToken = record.HiddenToken
		uploaded.ViewLimit = record.ViewLimit
	}
	return uploaded, nil
}

// allocateStoredName derives a timestamped name and verifies the store
// does not already hold it. Collisions need the same display name in the
// same millisecond, so one retry round is already generous.
func (fs *FileService) allocateStoredName(displayName string) (string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		storedName := utils.DeriveStoredName(displayName, time.Now())
		occupied, err := fs.blobs.Exists(storedName)
		if err != nil {
			return "", fmt.Errorf("failed to probe stored name: %v", err)
		}
		if !occupied {
			return storedName, nil
		}
		time.Sleep(time.Millisecond)
	}
	return "", ErrNameConflict
}

// newHiddenToken generates a unique URL-safe token, re-rolling on the
// astronomically unlikely store collision.
func (fs *FileService) newHiddenToken(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := utils.GenerateSecureToken(hiddenTokenBytes)
		if err != nil {
			return "", err
		}
		inUse, err := fs.records.TokenInUse(ctx, token)
		if err != nil {
			return "", err
		}
		if !inUse {
			return token, nil
		}
	}
	return "", ErrTokenConflict
}

// Delete removes a file and its record. The record goes first so a
// failure cannot strand a record pointing at a missing blob.
func (fs *FileService) Delete(ctx context.Context, storedName string) error {
	exists, err := fs.blobs.Exists(storedName)
	if err != nil {
		return fmt.Errorf("failed to check blob: %v", err)
	}
	if !exists {
		return ErrFileNotFound
	}

	if err := fs.records.Delete(ctx, storedName); err != nil {
		return fmt.Errorf("failed to delete record: %v", err)
	}
	if err := fs.blobs.Delete(storedName); err != nil {
		return fmt.Errorf("failed to delete blob: %v", err)
	}
	return nil
}

// ToggleHidden flips the hidden flag, issuing a fresh token when the file
// becomes hidden and clearing the token when it becomes public.
func (fs *FileService) ToggleHidden(ctx context.Context, storedName string) (*models.ToggleHiddenResponse, error) {
	record, err := fs.ensureRecord(ctx, storedName)
	if err != nil {
		return nil, err
	}

	response := &models.ToggleHiddenResponse{Name: storedName}

	if record.IsHidden {
		if err := fs.records.SetHidden(ctx, storedName, nil); err != nil {
			return nil, fs.mapStoreErr(err)
		}
		response.IsHidden = false
		return response, nil
	}

	token, err := fs.newHiddenToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := fs.records.SetHidden(ctx, storedName, &token); err != nil {
		return nil, fs.mapStoreErr(err)
	}

	shareURL := fs.shareURL(token)
	response.IsHidden = true
	response.HiddenToken = &token
	response.ShareURL = &shareURL
	return response, nil
}

// SetPassword protects the file with a bcrypt hash; an empty password
// clears protection.
func (fs *FileService) SetPassword(ctx context.Context, storedName, password string) error {
	if _, err := fs.ensureRecord(ctx, storedName); err != nil {
		return err
	}

	if password == "" {
		return fs.mapStoreErr(fs.records.SetPassword(ctx, storedName, nil))
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}
	return fs.mapStoreErr(fs.records.SetPassword(ctx, storedName, &hash))
}

// SetViewLimit sets or clears the view limit.
func (fs *FileService) SetViewLimit(ctx context.Context, storedName string, limit *int) error {
	if _, err := fs.ensureRecord(ctx, storedName); err != nil {
		return err
	}
	return fs.mapStoreErr(fs.records.SetViewLimit(ctx, storedName, limit))
}

// ResetViews zeroes the view counter, restarting view-limit accounting.
func (fs *FileService) ResetViews(ctx context.Context, storedName string) error {
	if _, err := fs.ensureRecord(ctx, storedName); err != nil {
		return err
	}
	return fs.mapStoreErr(fs.records.ResetViews(ctx, storedName))
}

// GenerateShareLink ensures the file is hidden behind a token and returns
// the share URL. Files that are still public are toggled hidden first.
func (fs *FileService) GenerateShareLink(ctx context.Context, storedName string) (*models.ShareLink, error) {
	record, err := fs.ensureRecord(ctx, storedName)
	if err != nil {
		return nil, err
	}

	var token string
	if record.IsHidden && record.HiddenToken != nil {
		token = *record.HiddenToken
	} else {
		token, err = fs.newHiddenToken(ctx)
		if err != nil {
			return nil, err
		}
		if err := fs.records.SetHidden(ctx, storedName, &token); err != nil {
			return nil, fs.mapStoreErr(err)
		}
	}

	link := &models.ShareLink{
		Name:        storedName,
		HiddenToken: token,
		ShareURL:    fs.shareURL(token),
	}

	if !record.IsPasswordProtected {
		if suggested, err := utils.GeneratePassword(suggestedPassLen); err == nil {
			link.SuggestedPassword = &suggested
		}
	}
	return link, nil
}

// ResolveToken maps a hidden token to its record.
func (fs *FileService) ResolveToken(ctx context.Context, token string) (*models.FileRecord, error) {
	record, err := fs.records.GetByToken(ctx, token)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetStats aggregates blob-store usage.
func (fs *FileService) GetStats(ctx context.Context) (*models.StorageStatsResponse, error) {
	blobs, err := fs.blobs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %v", err)
	}

	stats := &models.StorageStatsResponse{Files: []models.StatsFileEntry{}}
	for _, blob := range blobs {
		stats.TotalFiles++
		stats.TotalSize += blob.Size
		stats.Files = append(stats.Files, models.StatsFileEntry{
			Name:    blob.Name,
			Size:    blob.Size,
			Created: blob.Created,
		})
	}
	if stats.TotalFiles > 0 {
		stats.AverageSize = float64(stats.TotalSize) / float64(stats.TotalFiles)
	}
	return stats, nil
}

// HealthCheck reports blob store liveness.
func (fs *FileService) HealthCheck() error {
	return fs.blobs.HealthCheck()
}

// ensureRecord returns the record for a stored name, creating a default
// public record for a legacy blob that never got one. Deletion stays
// authoritative: a missing blob fails with ErrFileNotFound instead of
// resurrecting a record.
func (fs *FileService) ensureRecord(ctx context.Context, storedName string) (*models.FileRecord, error) {
	record, err := fs.records.Get(ctx, storedName)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, database.ErrRecordNotFound) {
		return nil, err
	}

	size, err := fs.blobs.GetSize(storedName)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat blob: %v", err)
	}

	record = &models.FileRecord{
		StoredName:  storedName,
		DisplayName: utils.DisplayNameFromStored(storedName),
		SizeBytes:   size,
		ContentType: utils.DetectContentType(storedName),
		CreatedAt:   time.Now(),
		CreatedBy:   defaultCreatedBy,
	}

	err = fs.records.Insert(ctx, record)
	if errors.Is(err, database.ErrRecordExists) {
		// Lost a create race; the winner's record is the truth.
		return fs.records.Get(ctx, storedName)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (fs *FileService) mapStoreErr(err error) error {
	if errors.Is(err, database.ErrRecordNotFound) {
		return ErrFileNotFound
	}
	return err
}

func (fs *FileService) shareURL(token string) string {
	return fmt.Sprintf("%s/h/%s", fs.cfg.AppURL, token)
}
