package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/myshadowbank/exolix-sdk/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config selects the ledger database.
type Config struct {
	Driver      string        `koanf:"driver" mapstructure:"driver"`
	DSN         string        `koanf:"dsn" mapstructure:"dsn"`
	Debug       bool          `koanf:"debug" mapstructure:"debug"`
	PingTimeout time.Duration `koanf:"ping_timeout" mapstructure:"ping_timeout"`

	// SkipMigrations leaves the schema untouched on Open.
	SkipMigrations bool `koanf:"skip_migrations" mapstructure:"skip_migrations"`

	// ExtraMigrations run after the ledger schema, filtered by dialect.
	ExtraMigrations []migrations.Source `koanf:"-" mapstructure:"-"`
}

type persistenceConfig struct {
	cfg Config
}

func (c persistenceConfig) GetDebug() bool {
	return c.cfg.Debug
}

func (c persistenceConfig) GetDriver() string {
	return c.cfg.Driver
}

func (c persistenceConfig) GetServer() string {
	return c.cfg.DSN
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	if c.cfg.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.cfg.PingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "exolix-ledger"
}

// Store owns the persistence client and the ledger stores built on it.
type Store struct {
	client       *persistence.Client
	transactions *TransactionStore
}

// Open connects to the configured database, applies the embedded ledger
// migrations for its dialect and builds the stores.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.Driver = strings.TrimSpace(strings.ToLower(cfg.Driver))
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	migrationDialect, err := migrationDialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := newPersistenceClient(cfg, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}

	if !cfg.SkipMigrations {
		if err := migrate(ctx, client, migrationDialect, cfg.ExtraMigrations); err != nil {
			_ = client.Close()
			return nil, err
		}
	}

	transactions, err := NewTransactionStore(client.DB())
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Store{client: client, transactions: transactions}, nil
}

func (s *Store) Transactions() *TransactionStore {
	if s == nil {
		return nil
	}
	return s.transactions
}

func (s *Store) DB() *bun.DB {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.DB()
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func migrate(ctx context.Context, client *persistence.Client, dialect string, extra []migrations.Source) error {
	_, err := migrations.Register(ctx, dialect, func(_ context.Context, source migrations.Source) error {
		client.RegisterSQLMigrations(source.FS)
		return nil
	}, migrations.WithExtraSources(extra...))
	if err != nil {
		return fmt.Errorf("sqlstore: register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func migrationDialectFor(driver string) (string, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return "", fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	return migrations.DialectForDriver(driver)
}

func newPersistenceClient(cfg Config, sqlDB *sql.DB) (*persistence.Client, error) {
	if cfg.Driver == DriverPostgres {
		return persistence.New(persistenceConfig{cfg: cfg}, sqlDB, pgdialect.New())
	}
	return persistence.New(persistenceConfig{cfg: cfg}, sqlDB, sqlitedialect.New())
}
