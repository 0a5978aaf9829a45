package service

import (
	"context"
	"encoding/json"
	"time"

	"GoDrive/model"

	"github.com/redis/go-redis/v9"
)

const sessionCacheTTL = 5 * time.Minute

// SessionCache keeps upload sessions in Redis so the per-part presign
// path does not hit the database on every call.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a session cache on a Redis client.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

func sessionCacheKey(uploadID string) string {
	return "upload:session:" + uploadID
}

// Get reads a cached session. A miss returns (nil, false).
func (c *SessionCache) Get(ctx context.Context, uploadID string) (*model.UploadSession, bool) {
	val, err := c.client.Get(ctx, sessionCacheKey(uploadID)).Result()
	if err != nil {
		return nil, false
	}
	var session model.UploadSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, false
	}
	return &session, true
}

// Set writes a session to the cache.
func (c *SessionCache) Set(ctx context.Context, session *model.UploadSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionCacheKey(session.UploadID), string(data), sessionCacheTTL).Err()
}

// Invalidate removes a session from the cache.
func (c *SessionCache) Invalidate(ctx context.Context, uploadID string) error {
	return c.client.Del(ctx, sessionCacheKey(uploadID)).Err()
}
