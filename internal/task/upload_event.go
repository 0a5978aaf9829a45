package task

import (
	"context"
	"errors"
	"log"
	"time"

	"GoDrive/internal/repo"
	"GoDrive/model"
	"GoDrive/utils"

	"gorm.io/gorm"
)

// UploadEventMessage is the completed-upload payload consumed by the
// worker. Attempt is zero on first delivery and incremented by the
// worker on each retry republish.
type UploadEventMessage struct {
	UploadID string    `json:"upload_id"`
	UserID   uint64    `json:"user_id"`
	FileID   uint64    `json:"file_id"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	DoneAt   time.Time `json:"done_at"`
	Attempt  int       `json:"attempt,omitempty"`
}

// ProcessUploadEvent credits a completed upload against the owner's
// used space and notifies them by mail. Safe to call again for the
// same upload: the accounted flag on the session guards redeliveries.
func ProcessUploadEvent(ctx context.Context, msg UploadEventMessage) error {
	var session model.UploadSession
	if err := repo.Db.WithContext(ctx).
		Where("upload_id = ?", msg.UploadID).
		First(&session).Error; err != nil {
		return err
	}
	if session.Status != model.UploadStatusCompleted {
		return errors.New("upload event: session not completed")
	}

	res := repo.Db.WithContext(ctx).Model(&model.UploadSession{}).
		Where("upload_id = ? AND accounted = ?", msg.UploadID, false).
		Update("accounted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Already credited by an earlier delivery.
		return nil
	}

	if err := repo.Db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", session.UserID).
		Update("use_space", gorm.Expr("use_space + ?", session.FileSize)).Error; err != nil {
		return err
	}

	var user model.User
	if err := repo.Db.WithContext(ctx).
		Where("id = ?", session.UserID).
		First(&user).Error; err != nil {
		return err
	}
	if err := utils.SendUploadCompleteMail(user.Email, session.FileName, session.FileSize); err != nil {
		// Notification is best effort.
		log.Printf("upload event: mail to %s failed: %v", user.Email, err)
	}
	return nil
}
