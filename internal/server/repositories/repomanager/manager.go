package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/commodities"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/products"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Commodities(db dbx.DBTX) commodities.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
