package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"GoDrive/internal/dto"
	"GoDrive/internal/storage"
	"GoDrive/model"
	"GoDrive/utils"

	"gorm.io/gorm"
)

// FileService serves the catalog surface around uploads: folders,
// listings and downloads of visible entries.
type FileService struct {
	db     *gorm.DB
	store  storage.Store
	bucket string
}

// NewFileService wires a FileService.
func NewFileService(db *gorm.DB, store storage.Store, bucket string) *FileService {
	return &FileService{db: db, store: store, bucket: bucket}
}

// CreateFolder creates a folder entry under an owned parent.
func (s *FileService) CreateFolder(ctx context.Context, userID uint64, req dto.CreateFolderRequest) (*model.UserFile, error) {
	if req.ParentID != 0 {
		var parent model.UserFile
		err := s.db.WithContext(ctx).
			Where("id = ? AND user_id = ? AND is_dir = 1 AND is_deleted = 0", req.ParentID, userID).
			First(&parent).Error
		if err != nil {
			return nil, ErrForbidden
		}
	}
	dir := &model.UserFile{
		UserID:   userID,
		ParentID: req.ParentID,
		Name:     req.Name,
		IsDir:    true,
	}
	if err := s.db.WithContext(ctx).Create(dir).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return dir, nil
}

// List returns visible entries of a folder, folders first.
func (s *FileService) List(ctx context.Context, userID uint64, req dto.FileListRequest) ([]model.UserFile, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := s.db.WithContext(ctx).
		Model(&model.UserFile{}).
		Where("user_id = ? AND parent_id = ? AND is_deleted = 0 AND hidden = 0", userID, req.ParentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var files []model.UserFile
	err := query.
		Order("is_dir DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// DownloadURL returns a presigned download URL for an owned, visible file.
func (s *FileService) DownloadURL(ctx context.Context, userID, fileID uint64, expiry time.Duration) (*dto.DownloadURLResponse, error) {
	var file model.UserFile
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_dir = 0 AND is_deleted = 0 AND hidden = 0", fileID, userID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = ContentTypeOf(file.Name)
	}
	safeName := utils.SanitizeHeaderFilename(file.Name)
	url, err := s.store.PresignedGetObject(ctx, s.bucket, file.ObjectKey, expiry, map[string]string{
		"response-content-type":        contentType,
		"response-content-disposition": fmt.Sprintf("attachment; filename=\"%s\"", safeName),
	})
	if err != nil {
		return nil, err
	}
	return &dto.DownloadURLResponse{
		URL:  url,
		Name: file.Name,
		Size: file.Size,
	}, nil
}

// Open streams an owned, visible file from the object store.
// Caller must close the reader.
func (s *FileService) Open(ctx context.Context, userID, fileID uint64) (io.ReadCloser, *model.UserFile, error) {
	var file model.UserFile
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_dir = 0 AND is_deleted = 0 AND hidden = 0", fileID, userID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	reader, _, err := s.store.GetObject(ctx, s.bucket, file.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return reader, &file, nil
}

// ContentTypeOf returns a content type by file extension.
func ContentTypeOf(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	case ".tar":
		return "application/x-tar"
	case ".gz":
		return "application/gzip"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
