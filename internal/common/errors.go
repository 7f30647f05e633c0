// Package common defines shared constants and sentinel errors used across
// the gallery service layers. Callers should use errors.Is to match these
// values; wrapped errors keep the underlying cause in the chain.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Input errors.
	ErrInvalidPayloadFormat = errors.New("invalid base64 data format")
	ErrInvalidFolder        = errors.New("invalid folder name")
	ErrValidation           = errors.New("validation error")

	// Identity errors.
	ErrUnauthenticated    = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Ownership errors. Missing and foreign assets are reported identically.
	ErrNotFoundOrForbidden = errors.New("image not found or access denied")

	// Blob store errors.
	ErrStoreWrite           = errors.New("object store write failed")
	ErrStoreRead            = errors.New("object store read failed")
	ErrStorageCleanupFailed = errors.New("failed to delete image from storage")

	// Relational store errors.
	ErrPersistence = errors.New("persistence error")
)
