package services

import (
	"context"
	"errors"

	"sharebin/models"
)

// Service-level error taxonomy. Controllers map these onto HTTP statuses
// and machine-readable error kinds.
var (
	ErrFileNotFound           = errors.New("file not found")
	ErrInvalidToken           = errors.New("invalid or missing token")
	ErrPasswordRequired       = errors.New("password required")
	ErrInvalidPassword        = errors.New("invalid password")
	ErrHiddenListingForbidden = errors.New("hidden listing requires admin access")
	ErrNameConflict           = errors.New("could not allocate a unique stored name")
	ErrTokenConflict          = errors.New("could not allocate a unique hidden token")
)

// RecordStore is the metadata store contract the file service depends on.
// database.FileRecords is the MongoDB implementation; tests substitute an
// in-memory fake. Every mutation is a single atomic read-modify-write
// keyed by stored name.
type RecordStore interface {
	Get(ctx context.Context, storedName string) (*models.FileRecord, error)
	GetByToken(ctx context.Context, token string) (*models.FileRecord, error)
	List(ctx context.Context) ([]models.FileRecord, error)
	Insert(ctx context.Context, record *models.FileRecord) error
	Delete(ctx context.Context, storedName string) error

	// RegisterView atomically increments counters, stamps the access time
	// and returns the post-update record.
	RegisterView(ctx context.Context, storedName string) (*models.FileRecord, error)
	ResetViews(ctx context.Context, storedName string) error
	SetHidden(ctx context.Context, storedName string, token *string) error
	SetPassword(ctx context.Context, storedName string, passwordHash *string) error
	SetViewLimit(ctx context.Context, storedName string, limit *int) error

	// DeleteIfExhausted removes the record only when its view count has
	// reached a set limit; exactly one racing caller observes true.
	DeleteIfExhausted(ctx context.Context, storedName string) (bool, error)
	TokenInUse(ctx context.Context, token string) (bool, error)
}
