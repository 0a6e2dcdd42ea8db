package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	moneygamedb "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories"
	moneygamemigrations "github.com/fairway-collective/moneygames/app/modules/moneygame/infrastructure/repositories/migrations"
	rosterdb "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories"
	rostermigrations "github.com/fairway-collective/moneygames/app/modules/roster/infrastructure/repositories/migrations"
	"github.com/fairway-collective/moneygames/config"
)

// DBService owns the shared bun connection pool.
type DBService struct {
	db *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// Close closes the connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(&rosterdb.League{})
	db.RegisterModel(&rosterdb.Chapter{})
	db.RegisterModel(&rosterdb.Course{})
	db.RegisterModel(&rosterdb.User{})
	db.RegisterModel(&rosterdb.Player{})
	db.RegisterModel(&moneygamedb.MoneyGame{})
	db.RegisterModel(&moneygamedb.MoneyGameEntry{})

	if logger != nil {
		logger.InfoContext(ctx, "Database connection established")
	}

	return &DBService{db: db}, nil
}

// Migrators returns one migrator per module, keyed by module name.
func Migrators(db *bun.DB) map[string]*migrate.Migrator {
	return map[string]*migrate.Migrator{
		"roster":    migrate.NewMigrator(db, rostermigrations.Migrations),
		"moneygame": migrate.NewMigrator(db, moneygamemigrations.Migrations),
	}
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
