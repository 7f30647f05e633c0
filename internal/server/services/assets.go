package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/logging"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/objectstore"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// DefaultPresignConcurrency bounds the parallel presign calls of one listing.
const DefaultPresignConcurrency = 8

// AssetView is an asset projected for clients, with its access URL resolved.
// SignedURL equals URL when the store could not presign.
type AssetView struct {
	ID          int64
	Filename    string
	Key         string
	URL         string
	SignedURL   string
	ContentType *string
	Size        *int64
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Owner       *models.Owner
}

type AssetService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	store              ObjectStore
	logger             logging.Logger
	presignConcurrency int
}

func NewAssetService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, logger logging.Logger) *AssetService {
	return &AssetService{
		db:                 db,
		repomanager:        m,
		store:              store,
		logger:             logger.With("module", "assets"),
		presignConcurrency: DefaultPresignConcurrency,
	}
}

// Upload validates the envelope, writes the object and records its metadata.
// A malformed envelope or folder fails before anything is written. When the
// metadata insert fails the object stays in the store unreferenced.
func (s *AssetService) Upload(ctx context.Context, ownerID int64, encoded, folder string) (*models.Asset, error) {
	env, err := objectstore.ParseEnvelope(encoded)
	if err != nil {
		return nil, err
	}

	key, err := s.store.UploadEnvelope(ctx, env, folder)
	if err != nil {
		return nil, err
	}

	contentType := env.ContentType
	size := env.EstimatedSize()

	asset, err := s.repomanager.Assets(s.db).Create(ctx, models.NewAsset{
		UserID:      ownerID,
		Key:         key,
		URL:         s.store.PermanentURL(key),
		ContentType: &contentType,
		Size:        &size,
	})
	if err != nil {
		return nil, persistenceError(ctx, s.logger, "asset metadata write failed, object orphaned", err,
			"key", key, "owner", ownerID)
	}

	s.logger.Info(ctx, "asset uploaded", "id", asset.ID, "key", key, "owner", ownerID, "size", size)
	return asset, nil
}

// ListMine returns the owner's assets, newest first.
func (s *AssetService) ListMine(ctx context.Context, ownerID int64) ([]AssetView, error) {
	assets, err := s.repomanager.Assets(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistenceError(ctx, s.logger, "list owner assets failed", err, "owner", ownerID)
	}
	return s.project(ctx, assets), nil
}

// ListPublic returns the assets of active users, newest first.
func (s *AssetService) ListPublic(ctx context.Context) ([]AssetView, error) {
	assets, err := s.repomanager.Assets(s.db).ListPublic(ctx)
	if err != nil {
		return nil, persistenceError(ctx, s.logger, "list public assets failed", err)
	}
	return s.project(ctx, assets), nil
}

// Get returns one asset of an active user, or common.ErrorNotFound.
func (s *AssetService) Get(ctx context.Context, id int64) (*AssetView, error) {
	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, persistenceError(ctx, s.logger, "get asset failed", err, "id", id)
	}

	view := s.project(ctx, []*models.Asset{asset})[0]
	return &view, nil
}

// Delete removes an asset the caller owns: object first, then metadata.
// The record is kept when the object could not be removed.
func (s *AssetService) Delete(ctx context.Context, ownerID, id int64) error {
	repo := s.repomanager.Assets(s.db)

	asset, err := repo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNotFoundOrForbidden
		}
		return persistenceError(ctx, s.logger, "ownership lookup failed", err, "id", id, "owner", ownerID)
	}

	if !s.store.Remove(ctx, asset.Key) {
		return common.ErrStorageCleanupFailed
	}

	if err := repo.DeleteByID(ctx, asset.ID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNotFoundOrForbidden
		}
		return persistenceError(ctx, s.logger, "asset metadata delete failed", err, "id", id, "key", asset.Key)
	}

	s.logger.Info(ctx, "asset deleted", "id", id, "key", asset.Key, "owner", ownerID)
	return nil
}

// DeleteAllMine removes every asset of the owner with one batch object
// delete. Metadata is removed only when the batch succeeded.
func (s *AssetService) DeleteAllMine(ctx context.Context, ownerID int64) (int64, error) {
	repo := s.repomanager.Assets(s.db)

	keys, err := repo.ListKeysByOwner(ctx, ownerID)
	if err != nil {
		return 0, persistenceError(ctx, s.logger, "list owner keys failed", err, "owner", ownerID)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if !s.store.RemoveMany(ctx, keys) {
		return 0, common.ErrStorageCleanupFailed
	}

	n, err := repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, persistenceError(ctx, s.logger, "owner metadata delete failed", err, "owner", ownerID)
	}

	s.logger.Info(ctx, "owner assets deleted", "owner", ownerID, "count", n)
	return n, nil
}

// project resolves a signed URL per asset concurrently. Each result is
// written to its own slot, so order is preserved.
func (s *AssetService) project(ctx context.Context, assets []*models.Asset) []AssetView {
	views := make([]AssetView, len(assets))

	var g errgroup.Group
	g.SetLimit(max(s.presignConcurrency, 1))

	for i, a := range assets {
		views[i] = AssetView{
			ID:          a.ID,
			Filename:    a.Key,
			Key:         a.Key,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
			UserID:      a.UserID,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
			Owner:       a.Owner,
		}

		g.Go(func() error {
			views[i].SignedURL = s.store.SignedURL(ctx, a.Key).Or(a.URL)
			return nil
		})
	}

	_ = g.Wait()
	return views
}
