package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	exolix "github.com/myshadowbank/exolix-sdk"
	_ "github.com/mattn/go-sqlite3"
)

func TestLedgerSource_ResolvesEachDialect(t *testing.T) {
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		source, err := LedgerSource(dialect)
		if err != nil {
			t.Fatalf("ledger source %s: %v", dialect, err)
		}
		if source.Name != LedgerSourceName || source.Dialect != dialect {
			t.Fatalf("unexpected source %#v", source)
		}
		content, err := fs.ReadFile(source.FS, "00001_exolix_transactions.up.sql")
		if err != nil {
			t.Fatalf("read %s up migration: %v", dialect, err)
		}
		if !strings.Contains(string(content), "exolix_transactions") {
			t.Fatalf("expected %s schema to create exolix_transactions", dialect)
		}
	}
	if _, err := LedgerSource("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}

func TestRegister_LedgerThenMatchingExtraSources(t *testing.T) {
	extra := fstest.MapFS{
		"00002_app_notes.up.sql":   {Data: []byte("CREATE TABLE app_notes (id TEXT);")},
		"00002_app_notes.down.sql": {Data: []byte("DROP TABLE app_notes;")},
	}
	var calls []string
	sources, err := Register(context.Background(), DialectSQLite, func(_ context.Context, source Source) error {
		calls = append(calls, source.Name)
		return nil
	}, WithExtraSources(
		Source{Name: "app", Dialect: "SQLite", FS: extra},
		Source{Name: "pg-only", Dialect: DialectPostgres, FS: extra},
		Source{Name: "portable", FS: extra},
	))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := []string{LedgerSourceName, "app", "portable"}
	if strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected registrations %v, got %v", want, calls)
	}
	if len(sources) != 3 || sources[1].Dialect != DialectSQLite {
		t.Fatalf("unexpected sources %#v", sources)
	}
}

func TestRegister_RejectsBadInput(t *testing.T) {
	noop := func(context.Context, Source) error { return nil }
	if _, err := Register(context.Background(), DialectSQLite, nil); err == nil {
		t.Fatalf("expected register function error")
	}
	if _, err := Register(context.Background(), "oracle", noop); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
	empty := fstest.MapFS{"README.md": {Data: []byte("notes")}}
	if _, err := Register(context.Background(), DialectSQLite, noop, WithExtraSources(Source{Name: "empty", FS: empty})); err == nil {
		t.Fatalf("expected missing up files error")
	}
	if _, err := Register(context.Background(), DialectSQLite, noop, WithExtraSources(Source{Name: "nil"})); err == nil {
		t.Fatalf("expected nil filesystem error")
	}
}

func TestRegister_WrapsRegisterFuncErrors(t *testing.T) {
	_, err := Register(context.Background(), DialectPostgres, func(context.Context, Source) error {
		return errors.New("boom")
	})
	if err == nil || !strings.Contains(err.Error(), LedgerSourceName) {
		t.Fatalf("expected wrapped error naming the source, got %v", err)
	}
}

func TestDialectForDriver(t *testing.T) {
	cases := map[string]string{
		"postgres": DialectPostgres,
		"sqlite3":  DialectSQLite,
		" SQLite ": DialectSQLite,
	}
	for driver, want := range cases {
		got, err := DialectForDriver(driver)
		if err != nil || got != want {
			t.Fatalf("DialectForDriver(%q) = %q, %v; want %q", driver, got, err, want)
		}
	}
	if _, err := DialectForDriver("mysql"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestTransactionsMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := exolix.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_exolix_transactions.up.sql",
		"data/sql/migrations/00001_exolix_transactions.down.sql",
		"data/sql/migrations/sqlite/00001_exolix_transactions.up.sql",
		"data/sql/migrations/sqlite/00001_exolix_transactions.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if !strings.Contains(string(content), "exolix_transactions") {
			t.Fatalf("expected %s to reference exolix_transactions", migrationPath)
		}
	}
}

func TestSQLiteTransactionsMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-exolix-transactions?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	ledger, err := LedgerSource(DialectSQLite)
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	sqliteMigrations := ledger.FS
	ctx := context.Background()
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_exolix_transactions.up.sql"); err != nil {
		t.Fatalf("apply up migration: %v", err)
	}

	insertStatement := `INSERT INTO exolix_transactions (id, exchange_id, status, exchange_created_at) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertStatement, "row_1", "ex_1", "wait", "2024-03-01T10:00:00Z"); err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertStatement, "row_2", "ex_1", "success", "2024-03-01T10:00:00Z"); err == nil {
		t.Fatalf("expected unique exchange id violation")
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_exolix_transactions.down.sql"); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}
	var tableCount int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
		"exolix_transactions",
	).Scan(&tableCount); err != nil {
		t.Fatalf("query table after down: %v", err)
	}
	if tableCount != 0 {
		t.Fatalf("expected exolix_transactions to be dropped after down migration")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
