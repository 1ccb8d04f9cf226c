// pkg/store/db.go - opening the catalog database.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/windowsadmins/appstore/pkg/logging"
	"github.com/windowsadmins/appstore/pkg/retry"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the catalog database and migrates the schema.
// driver is one of sqlite, postgres or mysql; for sqlite the DSN is a file path.
func OpenDB(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dialector = sqlite.Open(dsn + sep + "_busy_timeout=5000")
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	var db *gorm.DB
	connect := func() error {
		var err error
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		return err
	}

	// sqlite is a local file; only network databases are worth waiting for
	attempts := 1
	if driver != "sqlite" {
		attempts = 5
	}
	if err := retry.Retry(ctx, retry.RetryConfig{
		MaxRetries:      attempts,
		InitialInterval: 2 * time.Second,
		Multiplier:      2.0,
	}, connect); err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// a single connection keeps writes serialized in one sqlite file
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&SoftwareModel{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	logging.Debug("Catalog database ready", "driver", driver)
	return db, nil
}
