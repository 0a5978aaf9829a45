package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrIncompleteParts is returned by CompleteMultipartUpload when the
// object store rejects the part list (gap, bad ETag, undersized part).
var ErrIncompleteParts = errors.New("incomplete or invalid parts")

// ErrUploadGone is returned by CompleteMultipartUpload when the store
// no longer knows the upload id: it was aborted, or a previous
// completion already finalized it.
var ErrUploadGone = errors.New("upload unknown or already finalized")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ObjectName string
	Size       int64
}

// CompletedPart references one uploaded part by number and integrity token.
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// Store abstracts the object-store operations the upload flow needs.
type Store interface {
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params map[string]string) (string, error)

	// CreateMultipartUpload starts a multipart upload and returns the uploadID.
	CreateMultipartUpload(ctx context.Context, bucket, object, contentType string) (string, error)
	// PresignUploadPart returns a time-limited URL authorizing a PUT of one part.
	PresignUploadPart(ctx context.Context, bucket, object, uploadID string, partNumber int, ttl time.Duration) (string, error)
	// CompleteMultipartUpload stitches the uploaded parts into one object.
	CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []CompletedPart) error
	// AbortMultipartUpload discards an in-flight multipart upload.
	AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error
}
