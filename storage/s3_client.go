package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"sharebin/config"
)

// S3Client implements BlobStore for S3 and S3-compatible services.
type S3Client struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string
	endpoint string
}

// NewS3Client creates a new S3 client
func NewS3Client(cfg *config.Config) (*S3Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}

	// Set credentials if provided
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)
	}

	// Set custom endpoint if provided (for S3-compatible services)
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Client{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.S3Bucket,
		region:   cfg.S3Region,
		endpoint: cfg.S3Endpoint,
	}, nil
}

func isNotFoundErr(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}

// Upload uploads data to S3
func (s *S3Client) Upload(key string, data []byte) error {
	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})

	if err != nil {
		return NewStorageError("s3", "UPLOAD_FAILED", err.Error(), key)
	}

	return nil
}

// UploadStream uploads data from a stream to S3
func (s *S3Client) UploadStream(key string, reader io.Reader, size int64) error {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})

	if err != nil {
		return NewStorageError("s3", "UPLOAD_STREAM_FAILED", err.Error(), key)
	}

	return nil
}

// Download downloads data from S3
func (s *S3Client) Download(key string) ([]byte, error) {
	result, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if isNotFoundErr(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, NewStorageError("s3", "DOWNLOAD_FAILED", err.Error(), key)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, NewStorageError("s3", "READ_FAILED", err.Error(), key)
	}

	return data, nil
}

// DownloadStream returns a stream for downloading from S3
func (s *S3Client) DownloadStream(key string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if isNotFoundErr(err) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, NewStorageError("s3", "DOWNLOAD_STREAM_FAILED", err.Error(), key)
	}

	return result.Body, nil
}

// Delete deletes a blob from S3
func (s *S3Client) Delete(key string) error {
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return NewStorageError("s3", "DELETE_FAILED", err.Error(), key)
	}

	return nil
}

// Exists checks if a blob exists in S3
func (s *S3Client) Exists(key string) (bool, error) {
	_, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if isNotFoundErr(err) {
		return false, nil
	}
	if err != nil {
		return false, NewStorageError("s3", "HEAD_FAILED", err.Error(), key)
	}

	return true, nil
}

// GetSize returns the size of a blob
func (s *S3Client) GetSize(key string) (int64, error) {
	result, err := s.client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if isNotFoundErr(err) {
		return 0, ErrBlobNotFound
	}
	if err != nil {
		return 0, NewStorageError("s3", "HEAD_FAILED", err.Error(), key)
	}

	return aws.Int64Value(result.ContentLength), nil
}

// List returns every object in the bucket
func (s *S3Client) List() ([]BlobInfo, error) {
	var blobs []BlobInfo

	err := s.client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := aws.StringValue(obj.Key)
			if reservedNames[name] {
				continue
			}
			modified := aws.TimeValue(obj.LastModified)
			blobs = append(blobs, BlobInfo{
				Name:     name,
				Size:     aws.Int64Value(obj.Size),
				Created:  modified,
				Modified: modified,
			})
		}
		return true
	})
	if err != nil {
		return nil, NewStorageError("s3", "LIST_FAILED", err.Error(), "")
	}

	return blobs, nil
}

// GetStats returns storage statistics
func (s *S3Client) GetStats() (*StorageStats, error) {
	blobs, err := s.List()
	if err != nil {
		return nil, err
	}

	stats := &StorageStats{}
	for _, blob := range blobs {
		stats.TotalFiles++
		stats.TotalSize += blob.Size
	}
	return stats, nil
}

// GetProviderInfo returns provider metadata
func (s *S3Client) GetProviderInfo() *ProviderInfo {
	return &ProviderInfo{
		Name:     "s3",
		Type:     "s3",
		Region:   s.region,
		Endpoint: s.endpoint,
		Metadata: map[string]string{
			"bucket": s.bucket,
		},
	}
}

// HealthCheck verifies the bucket is reachable
func (s *S3Client) HealthCheck() error {
	_, err := s.client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 health check failed: %v", err)
	}
	return nil
}
