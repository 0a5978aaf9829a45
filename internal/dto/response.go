package dto

// MultipartInitResponse hands the client the capability pair plus the
// part layout it must follow.
type MultipartInitResponse struct {
	UploadID   string `json:"upload_id"`
	Key        string `json:"key"`
	PartSize   int64  `json:"part_size"`
	TotalParts int    `json:"total_parts"`
}

// PartURLResponse carries one time-limited part upload URL.
type PartURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// MultipartCompleteResponse returns the catalog entry made visible.
type MultipartCompleteResponse struct {
	FileID uint64 `json:"file_id"`
}

// DownloadURLResponse carries a presigned download URL.
type DownloadURLResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
