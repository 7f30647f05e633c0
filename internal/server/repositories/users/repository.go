package users

import (
	"context"

	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

// Repository persists gallery users. Lookups that find nothing return
// common.ErrorNotFound; a duplicate email returns common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetActiveByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Deactivate(ctx context.Context, id int64) error
}
