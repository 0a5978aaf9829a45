package service

import (
	"errors"

	"GoDrive/internal/storage"
)

var (
	// ErrForbidden means the acting user has no rights over the target
	// folder or object key.
	ErrForbidden = errors.New("forbidden")

	// ErrNameTaken means the destination folder already has an active
	// entry with the same name.
	ErrNameTaken = errors.New("name already exists in folder")

	// ErrNotFound means the referenced upload session or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUploadClosed means the upload session was already completed or aborted.
	ErrUploadClosed = errors.New("upload session closed")

	// ErrCatalogInconsistency means the object store completed the upload
	// but the catalog row could not be flipped visible. Only the catalog
	// update is safe to retry.
	ErrCatalogInconsistency = errors.New("catalog inconsistent with object store")

	// ErrIncompleteParts mirrors the object store's rejection of a
	// completion with a missing or invalid part.
	ErrIncompleteParts = storage.ErrIncompleteParts

	// ErrUploadGone mirrors the object store's rejection of a
	// completion whose upload id it no longer knows.
	ErrUploadGone = storage.ErrUploadGone
)
