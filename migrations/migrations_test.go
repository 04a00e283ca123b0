package migrations

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestForDriver(t *testing.T) {
	if d, err := ForDriver("postgres"); err != nil || d != Postgres {
		t.Fatalf("postgres: %v %+v", err, d)
	}
	if d, err := ForDriver("sqlite"); err != nil || d != SQLite {
		t.Fatalf("sqlite: %v %+v", err, d)
	}
	if _, err := ForDriver("mysql"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestRunSQLiteIsRepeatable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for i := 0; i < 2; i++ {
		if err := Run(db, SQLite); err != nil {
			t.Fatalf("run #%d: %v", i+1, err)
		}
	}
	for _, table := range []string{"dailyQuestion", "users"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}
