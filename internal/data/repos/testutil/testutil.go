package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a package-wide database shared by repo tests. Pair it with Tx so
// each test rolls back its writes. TEST_POSTGRES_DSN switches to postgres;
// otherwise a temporary SQLite file is used.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			db, dbErr = open(postgres.Open(dsn))
			return
		}
		dir, err := os.MkdirTemp("", "bytesolver-repo-test-*")
		if err != nil {
			dbErr = err
			return
		}
		db, dbErr = open(sqlite.Open(dbpkg.SQLiteDSN(filepath.Join(dir, "repo.db"))))
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

// FreshDB returns an isolated, migrated SQLite database for tests that run
// their own transactions (services, handlers).
func FreshDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "fresh.db")
	fresh, err := open(sqlite.Open(dbpkg.SQLiteDSN(path)))
	if err != nil {
		tb.Fatalf("failed to init fresh db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := fresh.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return fresh
}

// IsPostgres reports whether DB runs against TEST_POSTGRES_DSN.
func IsPostgres() bool {
	return os.Getenv("TEST_POSTGRES_DSN") != ""
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	conn, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := dbpkg.AutoMigrateAll(conn); err != nil {
		return nil, err
	}
	return conn, nil
}
