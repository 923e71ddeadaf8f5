package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"cableops.io/dashboard/internal/repository/models"
)

// OpenSQLite opens a migrated SQLite database in the test's temp dir.
// The file is removed with the temp dir when the test ends.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cableops.db")
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
	}, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto-migrate sqlite: %v", err)
	}
	return db
}
