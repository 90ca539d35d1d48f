// Package repomanager hands out repositories bound to a database handle or
// transaction, so services can run several repositories inside one unit of
// work.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/estately/estately/internal/dbx"
	"github.com/estately/estately/internal/server/repositories/bookings"
	"github.com/estately/estately/internal/server/repositories/favorites"
	"github.com/estately/estately/internal/server/repositories/images"
	"github.com/estately/estately/internal/server/repositories/properties"
	"github.com/estately/estately/internal/server/repositories/refreshtokens"
	"github.com/estately/estately/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Properties(db dbx.DBTX) properties.Repository
	Bookings(db dbx.DBTX) bookings.Repository
	Favorites(db dbx.DBTX) favorites.Repository
	Images(db dbx.DBTX) images.Repository
}
