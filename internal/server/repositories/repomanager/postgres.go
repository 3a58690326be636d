// Package repomanager vends PostgreSQL-backed repositories bound to a
// database handle or transaction, and applies schema migrations via goose.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/agritrack/internal/dbx"
	"github.com/dmitrijs2005/agritrack/internal/server/migrations"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/commodities"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/products"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/agritrack/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Products(db dbx.DBTX) products.Repository {
	return products.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Commodities(db dbx.DBTX) commodities.Repository {
	return commodities.NewPostgresRepository(db)
}

// Revocations returns the Postgres revocation list. A Redis-backed list is
// wired separately by the application when configured.
func (m *PostgresRepositoryManager) Revocations(db dbx.DBTX) revocations.Repository {
	return revocations.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
