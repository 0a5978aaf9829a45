package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"GoDrive/internal/dto"
	"GoDrive/internal/storage"
	"GoDrive/model"
)

// Locker serializes one critical section across server instances.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
}

// LockFactory builds a Locker for a key. Nil factories disable locking.
type LockFactory func(key string, ttl time.Duration) Locker

// Publisher emits upload lifecycle events. Nil publishers disable events.
type Publisher interface {
	PublishEvent(ctx context.Context, body []byte) error
}

// UploadCompletedEvent is the message published after a successful Complete.
type UploadCompletedEvent struct {
	UploadID string    `json:"upload_id"`
	UserID   uint64    `json:"user_id"`
	FileID   uint64    `json:"file_id"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	DoneAt   time.Time `json:"done_at"`
}

// UploadService drives the multipart upload protocol: it owns the
// ordering between the catalog and the object store and the rollback
// on each step's failure.
type UploadService struct {
	catalog  Catalog
	store    storage.Store
	bucket   string
	locks    LockFactory
	events   Publisher
	sessions *SessionCache
}

// NewUploadService wires the orchestrator. locks, events and sessions
// may be nil.
func NewUploadService(
	catalog Catalog,
	store storage.Store,
	bucket string,
	locks LockFactory,
	events Publisher,
	sessions *SessionCache,
) *UploadService {
	return &UploadService{
		catalog:  catalog,
		store:    store,
		bucket:   bucket,
		locks:    locks,
		events:   events,
		sessions: sessions,
	}
}

// Initiate authorizes the destination folder, creates the provisional
// catalog row, opens the store-side multipart upload and records the
// session. The returned (uploadId, key) pair is the capability the
// client needs for every subsequent call.
func (s *UploadService) Initiate(ctx context.Context, req dto.MultipartInitRequest) (*dto.MultipartInitResponse, error) {
	if req.Size <= 0 {
		return nil, fmt.Errorf("invalid file size %d", req.Size)
	}
	if req.ParentId != 0 {
		owned, err := s.catalog.FolderOwned(ctx, req.UserId, req.ParentId)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ErrForbidden
		}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	entry := &model.UserFile{
		UserID:      req.UserId,
		ParentID:    req.ParentId,
		Name:        req.FileName,
		IsDir:       false,
		ObjectKey:   BuildObjectKey(req.UserId, req.FileName),
		ContentType: contentType,
		Size:        req.Size,
		Hidden:      true,
	}
	if err := s.catalog.BeginUpload(ctx, entry); err != nil {
		return nil, err
	}

	uploadID, err := s.store.CreateMultipartUpload(ctx, s.bucket, entry.ObjectKey, contentType)
	if err != nil {
		if dropErr := s.catalog.DropProvisional(ctx, entry.ID); dropErr != nil {
			log.Printf("drop provisional row %d failed: %v", entry.ID, dropErr)
		}
		return nil, err
	}

	session := &model.UploadSession{
		UploadID:   uploadID,
		UserID:     req.UserId,
		UserFileID: entry.ID,
		ObjectKey:  entry.ObjectKey,
		FileName:   req.FileName,
		FileSize:   req.Size,
		PartSize:   PartSize,
		TotalParts: TotalParts(req.Size),
		Status:     model.UploadStatusPending,
	}
	if err := s.catalog.CreateSession(ctx, session); err != nil {
		if abortErr := s.store.AbortMultipartUpload(ctx, s.bucket, entry.ObjectKey, uploadID); abortErr != nil {
			log.Printf("abort upload %s failed: %v", uploadID, abortErr)
		}
		if dropErr := s.catalog.DropProvisional(ctx, entry.ID); dropErr != nil {
			log.Printf("drop provisional row %d failed: %v", entry.ID, dropErr)
		}
		return nil, err
	}
	if s.sessions != nil {
		_ = s.sessions.Set(ctx, session)
	}

	return &dto.MultipartInitResponse{
		UploadID:   uploadID,
		Key:        entry.ObjectKey,
		PartSize:   PartSize,
		TotalParts: session.TotalParts,
	}, nil
}

// PresignPart signs a PUT URL for one part. Re-requesting the same part
// number is allowed and simply yields a fresh URL.
func (s *UploadService) PresignPart(ctx context.Context, userID uint64, req dto.PartURLRequest) (*dto.PartURLResponse, error) {
	if !KeyOwnedBy(userID, req.Key) {
		return nil, ErrForbidden
	}
	session, err := s.loadSession(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID || session.ObjectKey != req.Key {
		return nil, ErrForbidden
	}
	if session.Status != model.UploadStatusPending || session.StoreCompleted {
		return nil, ErrUploadClosed
	}
	if req.PartNumber < 1 || req.PartNumber > session.TotalParts || req.PartNumber > MaxPartNumber {
		return nil, fmt.Errorf("part number %d out of range 1..%d", req.PartNumber, session.TotalParts)
	}

	url, err := s.store.PresignUploadPart(ctx, s.bucket, req.Key, req.UploadID, req.PartNumber, PartURLTTL)
	if err != nil {
		return nil, err
	}
	return &dto.PartURLResponse{
		URL:       url,
		ExpiresIn: int(PartURLTTL / time.Second),
	}, nil
}

// Complete finalizes the multipart upload and flips the catalog row
// visible. Idempotent by uploadId: repeating a finished Complete
// returns the same file id without touching the object store.
func (s *UploadService) Complete(ctx context.Context, userID uint64, req dto.MultipartCompleteRequest) (*dto.MultipartCompleteResponse, error) {
	if !KeyOwnedBy(userID, req.Key) {
		return nil, ErrForbidden
	}
	if s.locks != nil {
		lock := s.locks("lock:upload:complete:"+req.UploadID, 30*time.Second)
		if err := lock.Lock(ctx); err != nil {
			return nil, fmt.Errorf("lock failed: %w", err)
		}
		defer lock.Unlock(ctx)
	}

	session, err := s.catalog.SessionByUploadID(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID || session.ObjectKey != req.Key {
		return nil, ErrForbidden
	}
	switch session.Status {
	case model.UploadStatusCompleted:
		return &dto.MultipartCompleteResponse{FileID: session.UserFileID}, nil
	case model.UploadStatusAborted:
		return nil, ErrUploadClosed
	}

	if !session.StoreCompleted {
		parts := make([]storage.CompletedPart, 0, len(req.Parts))
		for _, p := range req.Parts {
			parts = append(parts, storage.CompletedPart{
				PartNumber: p.PartNumber,
				ETag:       strings.Trim(p.ETag, `"`),
			})
		}
		sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

		// The object store validates the part list; on rejection the catalog
		// row stays hidden and the session stays pending.
		if err := s.store.CompleteMultipartUpload(ctx, s.bucket, req.Key, req.UploadID, parts); err != nil {
			return nil, err
		}

		// The object now exists store-side. Record that before touching
		// the catalog so a retry of Complete redoes only the flip and
		// never re-runs the store call.
		if err := s.catalog.MarkStoreCompleted(ctx, session.ID); err != nil {
			log.Printf("mark session %s store-completed failed: %v", req.UploadID, err)
		}
		if s.sessions != nil {
			_ = s.sessions.Invalidate(ctx, req.UploadID)
		}
	}

	if err := s.finalizeSession(ctx, session); err != nil {
		return nil, err
	}
	return &dto.MultipartCompleteResponse{FileID: session.UserFileID}, nil
}

// finalizeSession does the catalog side of completion for a session
// whose store-side completion already succeeded: flip the row visible,
// mark the session completed, publish the event.
func (s *UploadService) finalizeSession(ctx context.Context, session *model.UploadSession) error {
	rows, err := s.catalog.FinalizeUpload(ctx, session.ObjectKey, session.FileSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogInconsistency, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no provisional row for key %s", ErrCatalogInconsistency, session.ObjectKey)
	}

	if err := s.catalog.MarkSession(ctx, session.ID, model.UploadStatusCompleted); err != nil {
		log.Printf("mark session %s completed failed: %v", session.UploadID, err)
	}
	if s.sessions != nil {
		_ = s.sessions.Invalidate(ctx, session.UploadID)
	}
	s.publishCompleted(ctx, session)
	return nil
}

// Abort discards a pending upload: store-side multipart upload first,
// then the provisional catalog row. Aborting twice is a no-op.
func (s *UploadService) Abort(ctx context.Context, userID uint64, req dto.MultipartAbortRequest) error {
	if !KeyOwnedBy(userID, req.Key) {
		return ErrForbidden
	}
	session, err := s.catalog.SessionByUploadID(ctx, req.UploadID)
	if err != nil {
		return err
	}
	if session.UserID != userID || session.ObjectKey != req.Key {
		return ErrForbidden
	}
	switch session.Status {
	case model.UploadStatusCompleted:
		return ErrUploadClosed
	case model.UploadStatusAborted:
		return nil
	}
	// Once the store stitched the object together there is nothing
	// left to abort; only the catalog flip remains.
	if session.StoreCompleted {
		return ErrUploadClosed
	}
	return s.abortSession(ctx, session)
}

// SweepExpired aborts pending sessions initiated before the TTL cutoff
// and reclaims their provisional rows. Returns how many were swept.
func (s *UploadService) SweepExpired(ctx context.Context, ttl time.Duration, limit int) (int, error) {
	if s.locks != nil {
		lock := s.locks("lock:upload:sweep", time.Minute)
		if err := lock.Lock(ctx); err != nil {
			return 0, nil
		}
		defer lock.Unlock(ctx)
	}

	sessions, err := s.catalog.StaleSessions(ctx, time.Now().Add(-ttl), limit)
	if err != nil {
		return 0, err
	}
	swept := 0
	for i := range sessions {
		session := &sessions[i]
		var err error
		if session.StoreCompleted {
			// The object exists; finish the catalog flip instead of
			// aborting a store upload that is already gone.
			err = s.finalizeSession(ctx, session)
		} else {
			err = s.abortSession(ctx, session)
		}
		if err != nil {
			log.Printf("sweep upload %s failed: %v", session.UploadID, err)
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *UploadService) abortSession(ctx context.Context, session *model.UploadSession) error {
	if err := s.store.AbortMultipartUpload(ctx, s.bucket, session.ObjectKey, session.UploadID); err != nil {
		return err
	}
	if err := s.catalog.DropProvisional(ctx, session.UserFileID); err != nil {
		return err
	}
	if err := s.catalog.MarkSession(ctx, session.ID, model.UploadStatusAborted); err != nil {
		return err
	}
	if s.sessions != nil {
		_ = s.sessions.Invalidate(ctx, session.UploadID)
	}
	return nil
}

func (s *UploadService) loadSession(ctx context.Context, uploadID string) (*model.UploadSession, error) {
	if s.sessions != nil {
		if session, ok := s.sessions.Get(ctx, uploadID); ok {
			return session, nil
		}
	}
	session, err := s.catalog.SessionByUploadID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if s.sessions != nil {
		_ = s.sessions.Set(ctx, session)
	}
	return session, nil
}

func (s *UploadService) publishCompleted(ctx context.Context, session *model.UploadSession) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(UploadCompletedEvent{
		UploadID: session.UploadID,
		UserID:   session.UserID,
		FileID:   session.UserFileID,
		FileName: session.FileName,
		Size:     session.FileSize,
		DoneAt:   time.Now(),
	})
	if err != nil {
		return
	}
	if err := s.events.PublishEvent(ctx, body); err != nil {
		log.Printf("publish upload event failed: %v", err)
	}
}
