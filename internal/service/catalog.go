package service

import (
	"errors"
	"time"

	"GoDrive/model"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"golang.org/x/net/context"
	"gorm.io/gorm"
)

// Catalog is the bookkeeping side of the upload flow: provisional
// catalog rows and upload session records.
type Catalog interface {
	// FolderOwned reports whether parentID is an active folder owned by userID.
	FolderOwned(ctx context.Context, userID uint64, parentID uint64) (bool, error)
	// BeginUpload inserts a provisional (hidden) catalog row.
	// A duplicate (owner, parent, name) maps to ErrNameTaken.
	BeginUpload(ctx context.Context, entry *model.UserFile) error
	// FinalizeUpload flips the row matching objectKey visible and
	// returns how many rows changed.
	FinalizeUpload(ctx context.Context, objectKey string, size int64) (int64, error)
	// DropProvisional hard-deletes a provisional row.
	DropProvisional(ctx context.Context, userFileID uint64) error

	CreateSession(ctx context.Context, session *model.UploadSession) error
	SessionByUploadID(ctx context.Context, uploadID string) (*model.UploadSession, error)
	MarkSession(ctx context.Context, sessionID uint64, status int) error
	// MarkStoreCompleted records that the store-side completion
	// succeeded, so only the catalog flip remains.
	MarkStoreCompleted(ctx context.Context, sessionID uint64) error
	// StaleSessions lists pending sessions initiated before the cutoff.
	StaleSessions(ctx context.Context, cutoff time.Time, limit int) ([]model.UploadSession, error)
}

// GormCatalog implements Catalog on the relational schema.
type GormCatalog struct {
	db *gorm.DB
}

// NewCatalog builds a Catalog on a gorm connection.
func NewCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// FolderOwned checks folder existence and ownership.
func (c *GormCatalog) FolderOwned(ctx context.Context, userID uint64, parentID uint64) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&model.UserFile{}).
		Where("id = ? AND user_id = ? AND is_dir = 1 AND is_deleted = 0", parentID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BeginUpload inserts the hidden row. The pre-insert existence check
// gives the common case a clean error; the composite unique index on
// (user_id, parent_id, name, is_deleted) closes the race window.
func (c *GormCatalog) BeginUpload(ctx context.Context, entry *model.UserFile) error {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&model.UserFile{}).
		Where("user_id = ? AND parent_id = ? AND name = ? AND is_deleted = 0",
			entry.UserID, entry.ParentID, entry.Name).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}
	if err := c.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

// FinalizeUpload flips hidden -> false for the row holding objectKey.
func (c *GormCatalog) FinalizeUpload(ctx context.Context, objectKey string, size int64) (int64, error) {
	result := c.db.WithContext(ctx).
		Model(&model.UserFile{}).
		Where("object_key = ? AND hidden = 1 AND is_deleted = 0", objectKey).
		Updates(map[string]interface{}{
			"hidden": false,
			"size":   size,
		})
	return result.RowsAffected, result.Error
}

// DropProvisional hard-deletes the provisional row of an abandoned upload.
func (c *GormCatalog) DropProvisional(ctx context.Context, userFileID uint64) error {
	return c.db.WithContext(ctx).
		Unscoped().
		Where("id = ? AND hidden = 1", userFileID).
		Delete(&model.UserFile{}).Error
}

// CreateSession inserts an upload session record.
func (c *GormCatalog) CreateSession(ctx context.Context, session *model.UploadSession) error {
	return c.db.WithContext(ctx).Create(session).Error
}

// SessionByUploadID loads an upload session by upload ID.
func (c *GormCatalog) SessionByUploadID(ctx context.Context, uploadID string) (*model.UploadSession, error) {
	var session model.UploadSession
	err := c.db.WithContext(ctx).Where("upload_id = ?", uploadID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkSession updates a session's status.
func (c *GormCatalog) MarkSession(ctx context.Context, sessionID uint64, status int) error {
	return c.db.WithContext(ctx).
		Model(&model.UploadSession{}).
		Where("id = ?", sessionID).
		Update("status", status).Error
}

// MarkStoreCompleted flags a session whose store completion succeeded.
func (c *GormCatalog) MarkStoreCompleted(ctx context.Context, sessionID uint64) error {
	return c.db.WithContext(ctx).
		Model(&model.UploadSession{}).
		Where("id = ?", sessionID).
		Update("store_completed", true).Error
}

// StaleSessions lists pending sessions older than the cutoff.
func (c *GormCatalog) StaleSessions(ctx context.Context, cutoff time.Time, limit int) ([]model.UploadSession, error) {
	var sessions []model.UploadSession
	err := c.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.UploadStatusPending, cutoff).
		Order("created_at asc").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
