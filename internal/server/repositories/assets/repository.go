package assets

import (
	"context"

	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// Repository persists asset metadata. Every listing is ordered newest first.
type Repository interface {
	Create(ctx context.Context, in models.NewAsset) (*models.Asset, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Asset, error)
	// ListPublic skips assets whose owner is deactivated.
	ListPublic(ctx context.Context) ([]*models.Asset, error)
	// GetByID finds an asset only while its owner is active.
	GetByID(ctx context.Context, id int64) (*models.Asset, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Asset, error)
	DeleteByID(ctx context.Context, id int64) error
	ListKeysByOwner(ctx context.Context, ownerID int64) ([]string, error)
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)
}
