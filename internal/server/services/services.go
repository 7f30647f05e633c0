// Package services contains the gallery business logic: the asset lifecycle
// (upload, listing with signed URLs, ownership-checked deletion) and account
// operations (registration, login, profile management).
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/objectstore"
)

// ObjectStore is the part of objectstore.Store the services depend on.
type ObjectStore interface {
	UploadEnvelope(ctx context.Context, env *objectstore.Envelope, folder string) (string, error)
	PermanentURL(key string) string
	SignedURL(ctx context.Context, key string) objectstore.SignedURL
	Remove(ctx context.Context, key string) bool
	RemoveMany(ctx context.Context, keys []string) bool
}

var _ ObjectStore = (*objectstore.Store)(nil)

// persistenceError logs a relational store failure once and tags it.
func persistenceError(ctx context.Context, logger logging.Logger, msg string, err error, args ...any) error {
	logger.Error(ctx, msg, append(args, "error", err)...)
	return fmt.Errorf("%w: %w", common.ErrPersistence, err)
}
