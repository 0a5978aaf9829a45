package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"GoDrive/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO client. The Core client
// exposes the raw multipart lifecycle the high-level API hides.
type MinioStore struct {
	client *minio.Client
	core   *minio.Core
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{
		client: client,
		core:   &minio.Core{Client: client},
	}
}

// GetObject fetches an object and its size from MinIO.
func (s *MinioStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		ObjectName: object,
		Size:       stat.Size,
	}
	return obj, info, nil
}

// PresignedGetObject returns a presigned download URL, optionally with
// response header overrides.
func (s *MinioStore) PresignedGetObject(
	ctx context.Context,
	bucket,
	object string,
	expiry time.Duration,
	params map[string]string,
) (string, error) {
	values := url.Values{}
	for key, value := range params {
		if value == "" {
			continue
		}
		values.Set(key, value)
	}
	u, err := s.client.PresignedGetObject(ctx, bucket, object, expiry, values)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// CreateMultipartUpload starts a multipart upload.
func (s *MinioStore) CreateMultipartUpload(ctx context.Context, bucket, object, contentType string) (string, error) {
	uploadID, err := s.core.NewMultipartUpload(ctx, bucket, object, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("create multipart upload: %w", err)
	}
	return uploadID, nil
}

// PresignUploadPart signs a PUT URL for one part of a multipart upload.
func (s *MinioStore) PresignUploadPart(
	ctx context.Context,
	bucket,
	object,
	uploadID string,
	partNumber int,
	ttl time.Duration,
) (string, error) {
	values := url.Values{}
	values.Set("uploadId", uploadID)
	values.Set("partNumber", strconv.Itoa(partNumber))
	u, err := s.client.PresignHeader(ctx, http.MethodPut, bucket, object, ttl, values, nil)
	if err != nil {
		return "", fmt.Errorf("presign part %d: %w", partNumber, err)
	}
	return u.String(), nil
}

// CompleteMultipartUpload finalizes a multipart upload from its part list.
func (s *MinioStore) CompleteMultipartUpload(
	ctx context.Context,
	bucket,
	object,
	uploadID string,
	parts []CompletedPart,
) error {
	completed := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, minio.CompletePart{
			PartNumber: p.PartNumber,
			ETag:       p.ETag,
		})
	}
	_, err := s.core.CompleteMultipartUpload(ctx, bucket, object, uploadID, completed, minio.PutObjectOptions{})
	if err != nil {
		switch {
		case isUploadGoneErr(err):
			return fmt.Errorf("%w: %v", ErrUploadGone, err)
		case isIncompletePartsErr(err):
			return fmt.Errorf("%w: %v", ErrIncompleteParts, err)
		}
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	return nil
}

// AbortMultipartUpload discards an in-flight multipart upload.
func (s *MinioStore) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	return s.core.AbortMultipartUpload(ctx, bucket, object, uploadID)
}

// isIncompletePartsErr reports whether the object store rejected a
// completion because the part list does not match what was uploaded.
func isIncompletePartsErr(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "InvalidPart", "InvalidPartOrder", "EntityTooSmall":
		return true
	}
	return false
}

// isUploadGoneErr reports whether the store rejected a completion
// because the upload id itself is unknown.
func isUploadGoneErr(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchUpload"
}

// InitMinio initializes the MinIO client and the bucket.
func InitMinio() *MinioStore {
	client, err := minio.New(fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: false,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, config.AppConfig.BucketName)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.AppConfig.BucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
	log.Println("init minio success")
	return NewMinioStore(client)
}
