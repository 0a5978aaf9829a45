package service

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"GoDrive/utils"
)

const (
	// PartSize is the fixed part size; every part except the last must
	// be exactly this many bytes (S3 minimum part size).
	PartSize int64 = 5 * 1024 * 1024

	// PartURLTTL is the lifetime of a presigned part upload URL.
	PartURLTTL = 300 * time.Second

	// MaxPartNumber is the S3 multipart part-number ceiling.
	MaxPartNumber = 10000
)

// BuildObjectKey builds the namespaced object path for a new upload:
// {ownerId}/uploads/{random}.{ext}, with ext defaulting to bin.
func BuildObjectKey(userID uint64, fileName string) string {
	ext := strings.TrimPrefix(path.Ext(fileName), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%d/uploads/%s.%s", userID, utils.GetToken(), ext)
}

// KeyOwnedBy reports whether the key's leading path segment is the
// user's id. This is the namespace check applied to every operation
// referencing an existing key.
func KeyOwnedBy(userID uint64, key string) bool {
	return strings.HasPrefix(key, strconv.FormatUint(userID, 10)+"/")
}

// TotalParts returns ceil(size / PartSize).
func TotalParts(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + PartSize - 1) / PartSize)
}
