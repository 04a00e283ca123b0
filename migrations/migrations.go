// Package migrations встраивает SQL-миграции для обоих драйверов хранилища.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS содержит миграции: каталог postgres/ и каталог sqlite/.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialect связывает драйвер хранилища с диалектом goose и каталогом миграций.
type Dialect struct {
	Goose string
	Dir   string
}

var (
	Postgres = Dialect{Goose: "postgres", Dir: "postgres"}
	SQLite   = Dialect{Goose: "sqlite3", Dir: "sqlite"}
)

// ForDriver возвращает диалект по имени драйвера из конфига.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unknown driver %q", driver)
	}
}

// Setup настраивает goose на встроенные миграции диалекта.
func Setup(d Dialect) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect(d.Goose); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Run применяет все новые миграции.
func Run(db *sql.DB, d Dialect) error {
	if err := Setup(d); err != nil {
		return err
	}
	if err := goose.Up(db, d.Dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
