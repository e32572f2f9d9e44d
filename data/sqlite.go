package data

import (
	"log"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSqlite opens a sqlite database through gorm. The pool is limited to one
// connection: every connection to a ":memory:" dsn is a separate database,
// and sqlite serializes writers anyway.
func OpenSqlite(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	logConfig := logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold: 100 * time.Millisecond,
		LogLevel:      logLevel,
		Colorful:      true,
	})

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logConfig,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "sqlite connection pool")
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}
