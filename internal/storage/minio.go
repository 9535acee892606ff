package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/s3utils"
	"github.com/rs/zerolog"

	"github.com/stashdrive/service/internal/errs"
)

// MinioConfig holds the settings needed to reach an S3-compatible bucket.
type MinioConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	Region     string
	UseSSL     bool
	PublicBase string // browser-accessible base URL, e.g. "https://storage.googleapis.com/my-bucket"
	PublicRead bool   // apply an anonymous GetObject policy at startup
	PartSize   uint64 // multipart chunk for uploads of unknown length; 0 means DefaultPartSize
}

// DefaultPartSize is the buffer used per part when the upload length is
// unknown. Without it minio-go sizes parts for a 5 TiB object.
const DefaultPartSize = 16 << 20

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
// It is safe for concurrent use.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
	partSize   uint64
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists and
// returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, cfg MinioConfig, log zerolog.Logger) (*MinioStorage, error) {
	if err := s3utils.CheckValidBucketName(cfg.Bucket); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "bucket name", err)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "create minio client", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, mapMinioError(err, "check bucket existence")
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, mapMinioError(err, fmt.Sprintf("create bucket %q", cfg.Bucket))
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("storage: created bucket")
	}

	if cfg.PublicRead {
		if err := client.SetBucketPolicy(ctx, cfg.Bucket, publicReadPolicy(cfg.Bucket)); err != nil {
			return nil, mapMinioError(err, "set bucket policy")
		}
	}

	partSize := cfg.PartSize
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	return &MinioStorage{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: cfg.PublicBase,
		partSize:   partSize,
	}, nil
}

// List walks every object under prefix recursively, including user metadata.
func (s *MinioStorage) List(ctx context.Context, prefix string) ([]Object, error) {
	opts := minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	}

	var out []Object
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, mapMinioError(obj.Err, "list objects")
		}
		out = append(out, Object{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			Metadata:     obj.UserMetadata,
		})
	}
	return out, nil
}

// Upload streams reader to MinIO under key. A negative size means unknown
// length: the body is sent as a multipart upload, buffering one part at a time.
func (s *MinioStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if err := s.checkNames(key); err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if size < 0 {
		opts.PartSize = s.partSize
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, opts)
	if err != nil {
		return mapMinioError(err, fmt.Sprintf("put object %q", key))
	}
	return nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.checkNames(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioError(err, fmt.Sprintf("remove object %q", key))
	}
	return nil
}

// Rename copies oldKey to newKey server-side, then removes oldKey.
// A failure after the copy leaves both keys in place.
func (s *MinioStorage) Rename(ctx context.Context, oldKey, newKey string) error {
	if oldKey == newKey {
		return nil
	}
	if err := s.checkNames(oldKey, newKey); err != nil {
		return err
	}
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: newKey},
		minio.CopySrcOptions{Bucket: s.bucket, Object: oldKey},
	)
	if err != nil {
		return mapMinioError(err, fmt.Sprintf("copy %q to %q", oldKey, newKey))
	}
	return s.Delete(ctx, oldKey)
}

// checkNames runs the SDK's own bucket and key validation up front. The SDK
// reports these as plain errors, which would otherwise read as transport
// failures.
func (s *MinioStorage) checkNames(keys ...string) error {
	if err := s3utils.CheckValidBucketName(s.bucket); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "bucket name", err)
	}
	for _, k := range keys {
		if err := s3utils.CheckValidObjectName(k); err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("object name %q", k), err)
		}
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

// mapMinioError translates a MinIO SDK error into an *errs.Error.
func mapMinioError(err error, msg string) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.Code {
		case "NoSuchBucket", "NoSuchKey", "NoSuchUpload":
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError", "InvalidArgument", "EntityTooLarge":
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		case "RequestTimeout", "SlowDown":
			return errs.Wrap(errs.ErrKindTimeout, msg, err)
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case http.StatusBadRequest:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		}
		if resp.StatusCode != 0 {
			return errs.Wrap(errs.ErrKindOperationFailed, msg, err)
		}
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
