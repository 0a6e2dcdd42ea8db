package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/fairway-collective/moneygames/config"
	"github.com/fairway-collective/moneygames/db/bundb"
	"github.com/fairway-collective/moneygames/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by the
// integration tests in one package.
type TestEnvironment struct {
	Ctx           context.Context
	Cancel        context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	NatsURL       string
	DB            *bun.DB
	Logger        *slog.Logger

	dbService *bundb.DBService
}

// NewTestEnvironment starts Postgres and NATS containers, connects, and runs
// all module migrations. Call Cleanup when the package's tests finish.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to set up postgres container: %w", err)
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to set up nats container: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbService, err := bundb.NewBunDBService(ctx, config.PostgresConfig{DSN: dsn}, logger)
	if err != nil {
		_ = natsContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db := dbService.GetDB()
	if err := runMigrations(ctx, db); err != nil {
		_ = dbService.Close()
		_ = natsContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestEnvironment{
		Ctx:           ctx,
		Cancel:        cancel,
		PgContainer:   pgContainer,
		NatsContainer: natsContainer,
		NatsURL:       natsURL,
		DB:            db,
		Logger:        logger,
		dbService:     dbService,
	}, nil
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	for moduleName, migrator := range bundb.Migrators(db) {
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("init migrations for %s: %w", moduleName, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", moduleName, err)
		}
	}
	return nil
}

// TruncateGameTables clears money game state between tests while keeping the
// seeded roster.
func (env *TestEnvironment) TruncateGameTables(ctx context.Context) error {
	_, err := env.DB.ExecContext(ctx, "TRUNCATE money_game_entries, money_games")
	return err
}

// Cleanup terminates containers and closes connections.
func (env *TestEnvironment) Cleanup() {
	ctx := context.Background()
	if env.dbService != nil {
		_ = env.dbService.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.Cancel()
}
