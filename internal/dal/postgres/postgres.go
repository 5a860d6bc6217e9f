package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
	"github.com/spf13/viper"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// MustNewClient creates a new Postgres client from ORDER_PG_* environment
// variables and applies migrations.
func MustNewClient() *Client {
	port := os.Getenv("ORDER_PG_PORT")
	if port == "" {
		port = "5432"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("ORDER_PGBOUNCER_HOST"),
		port,
		os.Getenv("ORDER_PG_USER"),
		os.Getenv("ORDER_PG_PASSWORD"),
		os.Getenv("ORDER_PG_DB"),
	)

	client, err := NewClient(context.Background(), connStr)
	if err != nil {
		panic(err)
	}

	if err := client.Migrate(context.Background(), viper.GetString("postgres.migrations_dir")); err != nil {
		client.Close()
		panic(err)
	}

	return client
}

// NewClient connects to Postgres and checks the connection.
func NewClient(ctx context.Context, connStr string) (*Client, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	if maxConns := viper.GetInt32("postgres.max_conns"); maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Client{
		pool: pool,
	}, nil
}

// migrationLockID is the advisory lock that serialises migrations of
// instances starting at the same time.
const migrationLockID int64 = 4716280015

// Migrate runs goose migrations. An empty dir means the migrations embedded
// into the binary.
func (p *Client) Migrate(ctx context.Context, dir string) error {
	var migrations fs.FS
	if dir != "" {
		migrations = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedMigrations, "migrations")
		if err != nil {
			return fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		migrations = sub
	}

	locker, err := lock.NewPostgresSessionLocker(lock.WithLockID(migrationLockID))
	if err != nil {
		return fmt.Errorf("failed to create migration locker: %w", err)
	}

	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations, goose.WithSessionLocker(locker))
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
