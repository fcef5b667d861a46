// Package testutil provides test helpers: a throwaway PostgreSQL container
// with the schema migrated, and a line-oriented console client.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/sixthworld/internal/config"
	"github.com/cory-johannsen/sixthworld/internal/storage/postgres"
)

const (
	testDatabase = "sixthworld_test"
	testUser     = "runner"
	testPassword = "runner"
)

// PostgresContainer is a disposable database and a Pool connected to it.
type PostgresContainer struct {
	Pool    *postgres.Pool
	RawPool *pgxpool.Pool
	Config  config.DatabaseConfig
}

// NewPostgresContainer starts PostgreSQL in Docker and connects a Pool. Both
// are torn down when the test ends.
//
// Precondition: Docker must be reachable.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	began := time.Now()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(testDatabase),
		tcpostgres.WithUsername(testUser),
		tcpostgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "starting postgres")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            testUser,
		Password:        testPassword,
		Name:            testDatabase,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 10 * time.Minute,
	}
	pool, err := postgres.NewPool(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err, "connecting to postgres")
	t.Cleanup(pool.Close)

	t.Logf("postgres ready on %s:%d after %s", host, cfg.Port, time.Since(began).Round(time.Millisecond))
	return &PostgresContainer{Pool: pool, RawPool: pool.DB(), Config: cfg}
}

// MigrationsDir is the absolute path of the repository's migrations.
func MigrationsDir() string {
	_, here, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(here), "..", "..", "migrations")
}

// ApplyMigrations brings the schema fully up with golang-migrate.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	m, err := migrate.New("file://"+MigrationsDir(), pc.DSN())
	require.NoError(t, err, "opening migrations")
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("applying migrations: %v", err)
	}
}

// DSN is the URL golang-migrate and pgx use to reach the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}
