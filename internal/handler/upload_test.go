package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GoDrive/internal/dto"
	"GoDrive/internal/service"
	"GoDrive/internal/storage"
	"GoDrive/model"

	"github.com/gin-gonic/gin"
)

// stubCatalog is the minimal in-memory Catalog the handler tests need.
type stubCatalog struct {
	files    map[uint64]*model.UserFile
	sessions map[string]*model.UploadSession
	nextID   uint64
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		files:    map[uint64]*model.UserFile{},
		sessions: map[string]*model.UploadSession{},
	}
}

func (c *stubCatalog) FolderOwned(ctx context.Context, userID, parentID uint64) (bool, error) {
	return false, nil
}

func (c *stubCatalog) BeginUpload(ctx context.Context, entry *model.UserFile) error {
	c.nextID++
	entry.ID = c.nextID
	copied := *entry
	c.files[entry.ID] = &copied
	return nil
}

func (c *stubCatalog) FinalizeUpload(ctx context.Context, objectKey string, size int64) (int64, error) {
	var rows int64
	for _, f := range c.files {
		if f.ObjectKey == objectKey && f.Hidden {
			f.Hidden = false
			rows++
		}
	}
	return rows, nil
}

func (c *stubCatalog) DropProvisional(ctx context.Context, userFileID uint64) error {
	delete(c.files, userFileID)
	return nil
}

func (c *stubCatalog) CreateSession(ctx context.Context, session *model.UploadSession) error {
	c.nextID++
	session.ID = c.nextID
	copied := *session
	c.sessions[session.UploadID] = &copied
	return nil
}

func (c *stubCatalog) SessionByUploadID(ctx context.Context, uploadID string) (*model.UploadSession, error) {
	session, ok := c.sessions[uploadID]
	if !ok {
		return nil, service.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (c *stubCatalog) MarkSession(ctx context.Context, sessionID uint64, status int) error {
	for _, s := range c.sessions {
		if s.ID == sessionID {
			s.Status = status
		}
	}
	return nil
}

func (c *stubCatalog) MarkStoreCompleted(ctx context.Context, sessionID uint64) error {
	for _, s := range c.sessions {
		if s.ID == sessionID {
			s.StoreCompleted = true
		}
	}
	return nil
}

func (c *stubCatalog) StaleSessions(ctx context.Context, cutoff time.Time, limit int) ([]model.UploadSession, error) {
	return nil, nil
}

type stubStore struct {
	uploads int
}

func (s *stubStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	return nil, storage.ObjectInfo{}, service.ErrNotFound
}

func (s *stubStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params map[string]string) (string, error) {
	return "https://store.example/" + object, nil
}

func (s *stubStore) CreateMultipartUpload(ctx context.Context, bucket, object, contentType string) (string, error) {
	s.uploads++
	return fmt.Sprintf("upload-%d", s.uploads), nil
}

func (s *stubStore) PresignUploadPart(ctx context.Context, bucket, object, uploadID string, partNumber int, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://store.example/%s?uploadId=%s&partNumber=%d", object, uploadID, partNumber), nil
}

func (s *stubStore) CompleteMultipartUpload(ctx context.Context, bucket, object, uploadID string, parts []storage.CompletedPart) error {
	return nil
}

func (s *stubStore) AbortMultipartUpload(ctx context.Context, bucket, object, uploadID string) error {
	return nil
}

// testRouter wires the upload routes with a fixed acting user.
func testRouter(userID uint64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	uploads := service.NewUploadService(newStubCatalog(), &stubStore{}, "drive", nil, nil, nil)
	h := NewUploadHandler(uploads)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	r.POST("/init", h.Init)
	r.POST("/url", h.PartURL)
	r.POST("/complete", h.Complete)
	r.POST("/abort", h.Abort)
	return r
}

func post(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Code != 0 {
		t.Fatalf("envelope code = %d, body %s", envelope.Code, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestUploadFlowOverHTTP(t *testing.T) {
	r := testRouter(7)

	w := post(t, r, "/init", dto.MultipartInitRequest{
		FileName: "movie.mp4",
		Size:     12 * 1024 * 1024,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("init status = %d, body %s", w.Code, w.Body.String())
	}
	var initResp dto.MultipartInitResponse
	decodeData(t, w, &initResp)
	if initResp.TotalParts != 3 {
		t.Fatalf("total parts = %d, want 3", initResp.TotalParts)
	}

	w = post(t, r, "/url", dto.PartURLRequest{
		Key:        initResp.Key,
		UploadID:   initResp.UploadID,
		PartNumber: 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("url status = %d, body %s", w.Code, w.Body.String())
	}
	var urlResp dto.PartURLResponse
	decodeData(t, w, &urlResp)
	if urlResp.URL == "" || urlResp.ExpiresIn <= 0 {
		t.Fatalf("bad part url response: %+v", urlResp)
	}

	w = post(t, r, "/complete", dto.MultipartCompleteRequest{
		Key:      initResp.Key,
		UploadID: initResp.UploadID,
		Parts: []dto.CompletedPart{
			{PartNumber: 1, ETag: "e1"},
			{PartNumber: 2, ETag: "e2"},
			{PartNumber: 3, ETag: "e3"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", w.Code, w.Body.String())
	}
	var completeResp dto.MultipartCompleteResponse
	decodeData(t, w, &completeResp)
	if completeResp.FileID == 0 {
		t.Fatal("complete returned no file id")
	}
}

func TestInitRejectsInvalidBody(t *testing.T) {
	r := testRouter(7)

	// Missing file name and non-positive size fail schema validation.
	w := post(t, r, "/init", map[string]interface{}{"size": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPartURLForeignKeyMapsTo403(t *testing.T) {
	r := testRouter(7)

	w := post(t, r, "/url", dto.PartURLRequest{
		Key:        "8/uploads/other.bin",
		UploadID:   "upload-1",
		PartNumber: 1,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCompleteUnknownUploadMapsTo404(t *testing.T) {
	r := testRouter(7)

	w := post(t, r, "/complete", dto.MultipartCompleteRequest{
		Key:      "7/uploads/ghost.bin",
		UploadID: "missing",
		Parts:    []dto.CompletedPart{{PartNumber: 1, ETag: "e"}},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAbortThenCompleteMapsTo409(t *testing.T) {
	r := testRouter(7)

	w := post(t, r, "/init", dto.MultipartInitRequest{FileName: "a.txt", Size: 100})
	var initResp dto.MultipartInitResponse
	decodeData(t, w, &initResp)

	w = post(t, r, "/abort", dto.MultipartAbortRequest{Key: initResp.Key, UploadID: initResp.UploadID})
	if w.Code != http.StatusOK {
		t.Fatalf("abort status = %d, body %s", w.Code, w.Body.String())
	}

	w = post(t, r, "/complete", dto.MultipartCompleteRequest{
		Key:      initResp.Key,
		UploadID: initResp.UploadID,
		Parts:    []dto.CompletedPart{{PartNumber: 1, ETag: "e"}},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("complete status = %d, want 409", w.Code)
	}
}
