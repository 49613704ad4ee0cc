// Package dbtest поднимает SQLite-базу с той же схемой для тестов хранилищ и use case.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/database/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Open создает мигрированную базу во временном каталоге теста.
// Пул ограничен одним соединением, чтобы транзакции SQLite не конфликтовали.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	src, err := iofs.New(migrations.FS, migrations.SQLiteDir)
	require.NoError(t, err)

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	require.NoError(t, err)

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}
