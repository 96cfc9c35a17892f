// Package testutil starts throwaway PostgreSQL servers for the die set store
// tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/cory-johannsen/udice/internal/config"
	"github.com/cory-johannsen/udice/internal/storage/postgres"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "udice"
	pgPassword = "udice"
	pgDatabase = "udice_test"
)

// PostgresContainer is a PostgreSQL server owned by one test. It is
// terminated, and its pool closed, when the test ends.
type PostgresContainer struct {
	Config  config.DatabaseConfig
	Pool    *postgres.Pool
	RawPool *pgxpool.Pool
}

// NewPostgresContainer starts an empty server and connects to it.
//
// Precondition: Docker must be available.
// Postcondition: Returns a connected container or fails the test. Skips the
// test under -short.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()
	start := time.Now()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: postgresRequest(),
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v [%s]", pgImage, err, time.Since(start))
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	cfg, err := databaseConfig(ctx, ctr)
	if err != nil {
		t.Fatalf("resolving postgres endpoint: %v", err)
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", cfg.Host, err, time.Since(start))
	}
	t.Cleanup(pool.Close)

	t.Logf("postgres ready on %s:%d [%s]", cfg.Host, cfg.Port, time.Since(start))
	return &PostgresContainer{Config: cfg, Pool: pool, RawPool: pool.DB()}
}

func postgresRequest() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        pgImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		},
		// The server logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}
}

func databaseConfig(ctx context.Context, ctr testcontainers.Container) (config.DatabaseConfig, error) {
	host, err := ctr.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "5432")
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("container port: %w", err)
	}
	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		Name:            pgDatabase,
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}, nil
}

// ApplyMigrations runs the embedded schema migrations.
//
// Postcondition: The dice_sets, units and dice tables exist.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	if _, err := postgres.MigrateUp(pc.DSN(), 0, zap.NewNop()); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
}

// Truncate empties every die set table.
func (pc *PostgresContainer) Truncate(t *testing.T) {
	t.Helper()
	if _, err := pc.RawPool.Exec(context.Background(), `TRUNCATE dice_sets CASCADE`); err != nil {
		t.Fatalf("truncating tables: %v", err)
	}
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string { return pc.Config.DSN() }
