package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	exolix "github.com/myshadowbank/exolix-sdk"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// LedgerSourceName labels the embedded exolix_transactions schema.
	LedgerSourceName = "exolix-ledger"

	ledgerDir = "data/sql/migrations"
)

// Source is one directory of *.up.sql / *.down.sql files. An empty Dialect
// applies to every dialect.
type Source struct {
	Name    string
	Dialect string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, source Source) error

type Option func(*registerOptions)

type registerOptions struct {
	extra []Source
}

// WithExtraSources registers application migrations after the ledger schema.
// Versions must sort after the ledger's own files.
func WithExtraSources(sources ...Source) Option {
	return func(o *registerOptions) {
		o.extra = append(o.extra, sources...)
	}
}

// DialectForDriver maps a database/sql driver name to its migration dialect.
func DialectForDriver(driver string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: no dialect for driver %q", driver)
	}
}

// LedgerSource returns the embedded ledger schema for dialect.
func LedgerSource(dialect string) (Source, error) {
	dir := ledgerDir
	switch dialect {
	case DialectPostgres:
	case DialectSQLite:
		dir += "/sqlite"
	default:
		return Source{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
	sub, err := fs.Sub(exolix.GetMigrationsFS(), dir)
	if err != nil {
		return Source{}, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}
	source := Source{Name: LedgerSourceName, Dialect: dialect, FS: sub}
	if err := requireUpFiles(source); err != nil {
		return Source{}, err
	}
	return source, nil
}

// Register hands fn the ledger schema for dialect followed by every extra
// source that applies to it, and returns the sources in registration order.
func Register(ctx context.Context, dialect string, fn RegisterFunc, opts ...Option) ([]Source, error) {
	if fn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	cfg := registerOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ledger, err := LedgerSource(dialect)
	if err != nil {
		return nil, err
	}
	sources := []Source{ledger}
	for _, extra := range cfg.extra {
		extra.Dialect = strings.TrimSpace(strings.ToLower(extra.Dialect))
		if extra.Dialect != "" && extra.Dialect != dialect {
			continue
		}
		if extra.FS == nil {
			return nil, fmt.Errorf("migrations: source %q has no filesystem", extra.Name)
		}
		if err := requireUpFiles(extra); err != nil {
			return nil, err
		}
		sources = append(sources, extra)
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := fn(ctx, source); err != nil {
			return nil, fmt.Errorf("migrations: register %s (%s): %w", source.Name, dialect, err)
		}
	}
	return sources, nil
}

func requireUpFiles(source Source) error {
	matches, err := fs.Glob(source.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s: %w", source.Name, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("migrations: source %q has no *.up.sql files", source.Name)
	}
	return nil
}
