package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/assets"
	"github.com/dmitrijs2005/photogallery/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// service code can run against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Assets(db dbx.DBTX) assets.Repository
}
