package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sharebin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrRecordNotFound is returned when no metadata record exists for a
	// stored name or token.
	ErrRecordNotFound = errors.New("file record not found")

	// ErrRecordExists is returned on an insert that hits the unique
	// stored_name or hidden_token index.
	ErrRecordExists = errors.New("file record already exists")
)

const fileCollection = "files"

// FileRecords is the MongoDB-backed metadata store. All per-record
// mutations go through single atomic update operations so concurrent
// downloads never lose increments or double-fire the view-limit delete.
type FileRecords struct {
	collection *mongo.Collection
}

// NewFileRecords returns a record store bound to the files collection.
func NewFileRecords() *FileRecords {
	return &FileRecords{
		collection: GetCollection(fileCollection),
	}
}

// EnsureIndexes creates the unique stored_name index and the unique
// sparse hidden_token index.
func (fr *FileRecords) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stored_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "hidden_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := fr.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create file indexes: %v", err)
	}
	return nil
}

// Get returns the record for a stored name.
func (fr *FileRecords) Get(ctx context.Context, storedName string) (*models.FileRecord, error) {
	var record models.FileRecord
	err := fr.collection.FindOne(ctx, bson.M{"stored_name": storedName}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %v", err)
	}
	return &record, nil
}

// GetByToken resolves a hidden token to its record.
func (fr *FileRecords) GetByToken(ctx context.Context, token string) (*models.FileRecord, error) {
	var record models.FileRecord
	err := fr.collection.FindOne(ctx, bson.M{"hidden_token": token}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record by token: %v", err)
	}
	return &record, nil
}

// List returns all records.
func (fr *FileRecords) List(ctx context.Context) ([]models.FileRecord, error) {
	cursor, err := fr.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list file records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.FileRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode file records: %v", err)
	}
	return records, nil
}

// Insert creates a new record.
func (fr *FileRecords) Insert(ctx context.Context, record *models.FileRecord) error {
	_, err := fr.collection.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return ErrRecordExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert file record: %v", err)
	}
	return nil
}

// Delete removes the record for a stored name.
func (fr *FileRecords) Delete(ctx context.Context, storedName string) error {
	_, err := fr.collection.DeleteOne(ctx, bson.M{"stored_name": storedName})
	if err != nil {
		return fmt.Errorf("failed to delete file record: %v", err)
	}
	return nil
}

// RegisterView atomically increments the view and download counters, sets
// the last access time, and returns the post-update record. Concurrent
// callers each observe a distinct view count.
func (fr *FileRecords) RegisterView(ctx context.Context, storedName string) (*models.FileRecord, error) {
	after := options.After
	opts := &options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var record models.FileRecord
	err := fr.collection.FindOneAndUpdate(ctx,
		bson.M{"stored_name": storedName},
		bson.M{
			"$inc": bson.M{"view_count": 1, "download_count": 1},
			"$set": bson.M{"last_accessed_at": time.Now()},
		},
		opts,
	).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register view: %v", err)
	}
	return &record, nil
}

// ResetViews zeroes the view counter. The lifetime download counter is
// left alone.
func (fr *FileRecords) ResetViews(ctx context.Context, storedName string) error {
	result, err := fr.collection.UpdateOne(ctx,
		bson.M{"stored_name": storedName},
		bson.M{"$set": bson.M{"view_count": 0}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset views: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetHidden marks the record hidden with the given token, or clears both
// the flag and the token when token is nil.
func (fr *FileRecords) SetHidden(ctx context.Context, storedName string, token *string) error {
	var update bson.M
	if token != nil {
		update = bson.M{"$set": bson.M{"is_hidden": true, "hidden_token": *token}}
	} else {
		update = bson.M{
			"$set":   bson.M{"is_hidden": false},
			"$unset": bson.M{"hidden_token": ""},
		}
	}

	result, err := fr.collection.UpdateOne(ctx, bson.M{"stored_name": storedName}, update)
	if err != nil {
		return fmt.Errorf("failed to update hidden state: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetPassword stores the bcrypt hash, or clears protection when hash is nil.
func (fr *FileRecords) SetPassword(ctx context.Context, storedName string, passwordHash *string) error {
	var update bson.M
	if passwordHash != nil {
		update = bson.M{"$set": bson.M{"is_password_protected": true, "password_hash": *passwordHash}}
	} else {
		update = bson.M{
			"$set":   bson.M{"is_password_protected": false},
			"$unset": bson.M{"password_hash": ""},
		}
	}

	result, err := fr.collection.UpdateOne(ctx, bson.M{"stored_name": storedName}, update)
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SetViewLimit sets or clears the view limit.
func (fr *FileRecords) SetViewLimit(ctx context.Context, storedName string, limit *int) error {
	var update bson.M
	if limit != nil {
		update = bson.M{"$set": bson.M{"view_limit": *limit}}
	} else {
		update = bson.M{"$unset": bson.M{"view_limit": ""}}
	}

	result, err := fr.collection.UpdateOne(ctx, bson.M{"stored_name": storedName}, update)
	if err != nil {
		return fmt.Errorf("failed to update view limit: %v", err)
	}
	if result.MatchedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteIfExhausted removes the record only if its view count has reached
// a set view limit. The guarded delete makes the view-limit transition a
// single winner among racing downloads: exactly one caller sees true.
func (fr *FileRecords) DeleteIfExhausted(ctx context.Context, storedName string) (bool, error) {
	result, err := fr.collection.DeleteOne(ctx, bson.M{
		"stored_name": storedName,
		"view_limit":  bson.M{"$ne": nil},
		"$expr":       bson.M{"$gte": bson.A{"$view_count", "$view_limit"}},
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete exhausted record: %v", err)
	}
	return result.DeletedCount > 0, nil
}

// TokenInUse reports whether any record already carries the token.
func (fr *FileRecords) TokenInUse(ctx context.Context, token string) (bool, error) {
	count, err := fr.collection.CountDocuments(ctx, bson.M{"hidden_token": token})
	if err != nil {
		return false, fmt.Errorf("failed to check token: %v", err)
	}
	return count > 0, nil
}
