package model

import (
	"time"

	"gorm.io/gorm"
)

type UserFile struct {
	ID uint64 `gorm:"primaryKey" json:"id,omitempty"`

	UserID uint64 `gorm:"column:user_id;not null;uniqueIndex:uk_user_parent_name_active,priority:1" json:"user_id,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	// ParentID is 0 for root-level entries. Root uses a sentinel
	// rather than NULL: MySQL unique indexes admit duplicate NULLs,
	// which would exempt root entries from the name constraint below.
	ParentID uint64 `gorm:"column:parent_id;not null;default:0;index;uniqueIndex:uk_user_parent_name_active,priority:2" json:"parent_id,omitempty"`

	Name string `gorm:"column:name;size:255;not null;uniqueIndex:uk_user_parent_name_active,priority:3" json:"name,omitempty"`

	IsDir bool `gorm:"column:is_dir;not null;default:false" json:"is_dir,omitempty"`

	// ObjectKey is the object-store path, namespaced as
	// {user_id}/uploads/{random}.{ext}. Empty for folders.
	ObjectKey   string `gorm:"column:object_key;size:512;not null;default:'';index" json:"object_key,omitempty"`
	ContentType string `gorm:"column:content_type;size:128;not null;default:''" json:"content_type,omitempty"`

	Size int64 `gorm:"column:size;not null;default:0" json:"size,omitempty"`

	// Hidden is true from Initiate until the multipart upload completes.
	Hidden bool `gorm:"column:hidden;not null;default:false" json:"hidden,omitempty"`

	IsDeleted bool           `gorm:"column:is_deleted;default:false;uniqueIndex:uk_user_parent_name_active,priority:4" json:"is_deleted,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// TableName returns the database table name.
func (UserFile) TableName() string {
	return "user_file"
}
