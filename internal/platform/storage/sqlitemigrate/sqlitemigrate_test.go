package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func TestApplyRunsMigrationsInOrder(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0002_add.sql":  {Data: []byte("ALTER TABLE notes ADD COLUMN body TEXT;")},
		"0001_init.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")},
	}

	if err := Apply(sqlDB, migrationFS); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := sqlDB.Exec("INSERT INTO notes (id, body) VALUES (1, 'x')"); err != nil {
		t.Fatalf("schema incomplete after migrations: %v", err)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0001_init.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")},
	}

	if err := Apply(sqlDB, migrationFS); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := Apply(sqlDB, migrationFS); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	var applied int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied = %d, want 1", applied)
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := `-- +migrate Up
CREATE TABLE a (id INTEGER);
-- +migrate Down
DROP TABLE a;`

	up := ExtractUpMigration(content)
	if up == content {
		t.Fatal("up section should exclude the down section")
	}
	if want := "CREATE TABLE a"; !strings.Contains(up, want) {
		t.Fatalf("up section missing %q: %q", want, up)
	}
	if strings.Contains(up, "DROP TABLE") {
		t.Fatalf("up section includes down SQL: %q", up)
	}

	plain := "CREATE TABLE b (id INTEGER);"
	if got := ExtractUpMigration(plain); got != plain {
		t.Fatalf("unmarked content should pass through, got %q", got)
	}
}
