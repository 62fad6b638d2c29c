package services

import (
	"context"
	"errors"
	"io"
	"time"

	"sharebin/database"
	"sharebin/storage"
	"sharebin/utils"

	"github.com/sirupsen/logrus"
)

// DownloadResult carries an admitted download. Finalize must be called
// after the body has been handed to the transport; it performs the
// view-limit deletion when this request was the one that exhausted the
// limit.
type DownloadResult struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	FileName    string
	Finalize    func()
}

// Download authorizes a read of storedName and opens the blob stream.
//
// Decision order: missing blob is NotFound before any gate; a hidden
// record requires the matching token unless the caller is admin; a
// password-protected record then requires the correct password; anything
// else is admitted. A blob without a record is a legacy public file and
// is admitted unconditionally.
func (fs *FileService) Download(ctx context.Context, storedName, token, password string, isAdmin bool) (*DownloadResult, error) {
	exists, err := fs.blobs.Exists(storedName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrFileNotFound
	}

	record, err := fs.records.Get(ctx, storedName)
	if err != nil && !errors.Is(err, database.ErrRecordNotFound) {
		return nil, err
	}
	hasRecord := err == nil

	if hasRecord && record.IsHidden && !isAdmin {
		if record.HiddenToken == nil || !utils.SecureCompare(token, *record.HiddenToken) {
			return nil, ErrInvalidToken
		}
	}

	if hasRecord && record.IsPasswordProtected {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		if record.PasswordHash == nil || !utils.CheckPasswordHash(password, *record.PasswordHash) {
			return nil, ErrInvalidPassword
		}
	}

	body, err := fs.blobs.DownloadStream(storedName)
	if errors.Is(err, storage.ErrBlobNotFound) {
		// Lost a race against a view-limit delete.
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &DownloadResult{
		Body:        body,
		FileName:    storedName,
		ContentType: utils.DetectContentType(storedName),
		Finalize:    func() {},
	}

	if size, err := fs.blobs.GetSize(storedName); err == nil {
		result.Size = size
	}

	if !hasRecord {
		return result, nil
	}

	if record.ContentType != "" {
		result.ContentType = record.ContentType
	}
	result.Size = record.SizeBytes

	// The caller is already admitted; a counter failure must not turn an
	// authorized read into an error.
	updated, err := fs.records.RegisterView(ctx, storedName)
	if err != nil {
		fs.log.WithFields(logrus.Fields{
			"stored_name": storedName,
			"error":       err.Error(),
		}).Warn("failed to register view")
		return result, nil
	}

	if updated.ViewLimitReached() {
		result.Finalize = func() { fs.finalizeViewLimit(storedName) }
	}

	return result, nil
}

// finalizeViewLimit runs after the triggering response body is handed
// off. The guarded record delete elects a single winner among concurrent
// exhausted downloads; only the winner removes the blob.
func (fs *FileService) finalizeViewLimit(storedName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := fs.records.DeleteIfExhausted(ctx, storedName)
	if err != nil {
		fs.log.WithFields(logrus.Fields{
			"stored_name": storedName,
			"error":       err.Error(),
		}).Error("view-limit record delete failed")
		return
	}
	if !deleted {
		return
	}

	if err := fs.blobs.Delete(storedName); err != nil {
		fs.log.WithFields(logrus.Fields{
			"stored_name": storedName,
			"error":       err.Error(),
		}).Error("view-limit blob delete failed")
		return
	}

	fs.log.WithField("stored_name", storedName).Info("view limit reached; file deleted")
}
