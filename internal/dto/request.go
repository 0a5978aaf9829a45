package dto

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type MultipartInitRequest struct {
	UserId      uint64 `json:"-"`
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	ParentId    uint64 `json:"parent_id"`
}

type PartURLRequest struct {
	Key        string `json:"key" binding:"required"`
	UploadID   string `json:"upload_id" binding:"required"`
	PartNumber int    `json:"part_number" binding:"required,gte=1"`
}

type CompletedPart struct {
	PartNumber int    `json:"part_number" binding:"required,gte=1"`
	ETag       string `json:"etag" binding:"required"`
}

type MultipartCompleteRequest struct {
	Key      string          `json:"key" binding:"required"`
	UploadID string          `json:"upload_id" binding:"required"`
	Parts    []CompletedPart `json:"parts" binding:"required,min=1,dive"`
}

type MultipartAbortRequest struct {
	Key      string `json:"key" binding:"required"`
	UploadID string `json:"upload_id" binding:"required"`
}

type DownloadURLRequest struct {
	FileID uint64 `json:"file_id" binding:"required"`
}

type CreateFolderRequest struct {
	ParentID uint64 `json:"parent_id"`
	Name     string `json:"name" binding:"required"`
}

type FileListRequest struct {
	ParentID uint64 `json:"parent_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}
