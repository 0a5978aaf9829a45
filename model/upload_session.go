package model

import "time"

const (
	UploadStatusPending   = 0
	UploadStatusCompleted = 1
	UploadStatusAborted   = 2
)

type UploadSession struct {
	ID uint64 `gorm:"primaryKey"`

	// UploadID is the opaque token issued by the object store.
	UploadID string `gorm:"column:upload_id;size:128;uniqueIndex;not null"`

	UserID uint64 `gorm:"column:user_id;not null;index"`
	User   User   `gorm:"foreignKey:UserID;references:ID"`

	// UserFileID is the provisional catalog row created at Initiate.
	UserFileID uint64 `gorm:"column:user_file_id;not null;index"`

	ObjectKey string `gorm:"column:object_key;size:512;not null"`
	FileName  string `gorm:"column:file_name;size:255;not null"`
	FileSize  int64  `gorm:"column:file_size;not null"`

	PartSize   int64 `gorm:"column:part_size;not null"`
	TotalParts int   `gorm:"column:total_parts;not null"`

	Status int `gorm:"column:status;not null;default:0;index"`

	// StoreCompleted flips once the store-side completion has
	// succeeded. From then on a retry of Complete must only redo the
	// catalog flip: the store call is not idempotent and would come
	// back NoSuchUpload.
	StoreCompleted bool `gorm:"column:store_completed;not null;default:false"`

	// Accounted flips when the event worker has credited the upload
	// against the owner's used space. Guards redelivered events.
	Accounted bool `gorm:"column:accounted;not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name.
func (UploadSession) TableName() string {
	return "upload_session"
}
