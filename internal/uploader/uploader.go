package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"GoDrive/internal/dto"
)

// apiEnvelope is the server's response wrapper.
type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Uploader drives a multipart upload against the coordination API.
// The server hands out per-part presigned URLs; part bytes go straight
// to the object store.
type Uploader struct {
	BaseURL     string
	Token       string
	HTTPClient  *http.Client
	Concurrency int
}

// New returns an Uploader for the given API base URL and bearer token.
func New(baseURL, token string) *Uploader {
	return &Uploader{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Token:       token,
		HTTPClient:  http.DefaultClient,
		Concurrency: 4,
	}
}

type partResult struct {
	part dto.CompletedPart
	err  error
}

// Upload pushes a local file into the target folder and returns the
// catalog file id. On any part failure the upload is aborted
// server-side before the error is returned.
func (u *Uploader) Upload(ctx context.Context, localPath string, parentID uint64, contentType string) (uint64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()

	var initResp dto.MultipartInitResponse
	err = u.call(ctx, "/api/file/upload/multipart/init", dto.MultipartInitRequest{
		FileName:    filepath.Base(localPath),
		ContentType: contentType,
		Size:        size,
		ParentId:    parentID,
	}, &initResp)
	if err != nil {
		return 0, err
	}

	parts, err := u.uploadParts(ctx, f, size, &initResp)
	if err != nil {
		u.abort(ctx, initResp.Key, initResp.UploadID)
		return 0, err
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].PartNumber < parts[j].PartNumber })

	var completeResp dto.MultipartCompleteResponse
	err = u.call(ctx, "/api/file/upload/multipart/complete", dto.MultipartCompleteRequest{
		Key:      initResp.Key,
		UploadID: initResp.UploadID,
		Parts:    parts,
	}, &completeResp)
	if err != nil {
		u.abort(ctx, initResp.Key, initResp.UploadID)
		return 0, err
	}
	return completeResp.FileID, nil
}

// uploadParts reads PartSize ranges off the file and PUTs each one,
// up to Concurrency in flight.
func (u *Uploader) uploadParts(ctx context.Context, f *os.File, size int64, init *dto.MultipartInitResponse) ([]dto.CompletedPart, error) {
	concurrency := u.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	results := make(chan partResult, init.TotalParts)

	var wg sync.WaitGroup
	for partNumber := 1; partNumber <= init.TotalParts; partNumber++ {
		offset := int64(partNumber-1) * init.PartSize
		length := init.PartSize
		if offset+length > size {
			length = size - offset
		}
		buf := make([]byte, length)
		if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, err
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(n int, data []byte) {
			defer wg.Done()
			defer func() { <-sem }()
			etag, err := u.uploadPart(ctx, init.Key, init.UploadID, n, data)
			if err != nil {
				results <- partResult{err: fmt.Errorf("part %d: %w", n, err)}
				return
			}
			results <- partResult{part: dto.CompletedPart{PartNumber: n, ETag: etag}}
		}(partNumber, buf)
	}
	wg.Wait()
	close(results)

	parts := make([]dto.CompletedPart, 0, init.TotalParts)
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		parts = append(parts, r.part)
	}
	return parts, nil
}

// uploadPart fetches a presigned URL and PUTs the part bytes. A 403
// means the signature expired mid-flight; the URL is refreshed once.
func (u *Uploader) uploadPart(ctx context.Context, key, uploadID string, partNumber int, data []byte) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var urlResp dto.PartURLResponse
		err := u.call(ctx, "/api/file/upload/multipart/url", dto.PartURLRequest{
			Key:        key,
			UploadID:   uploadID,
			PartNumber: partNumber,
		}, &urlResp)
		if err != nil {
			return "", err
		}

		etag, status, err := u.putPart(ctx, urlResp.URL, data)
		if err != nil {
			return "", err
		}
		if status == http.StatusForbidden && attempt == 0 {
			continue
		}
		if status < 200 || status > 299 {
			return "", fmt.Errorf("part upload status %d", status)
		}
		if etag == "" {
			return "", fmt.Errorf("part upload returned no etag")
		}
		return etag, nil
	}
	return "", fmt.Errorf("part upload forbidden after url refresh")
}

func (u *Uploader) putPart(ctx context.Context, url string, data []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", 0, err
	}
	req.ContentLength = int64(len(data))

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	etag := strings.Trim(resp.Header.Get("ETag"), "\"")
	return etag, resp.StatusCode, nil
}

func (u *Uploader) abort(ctx context.Context, key, uploadID string) {
	_ = u.call(ctx, "/api/file/upload/multipart/abort", dto.MultipartAbortRequest{
		Key:      key,
		UploadID: uploadID,
	}, nil)
}

// call POSTs a JSON body to the API and decodes the data envelope.
func (u *Uploader) call(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s: status %d: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || envelope.Code != 0 {
		return fmt.Errorf("%s: status %d: %s", path, resp.StatusCode, envelope.Msg)
	}
	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}
