package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultDatabasePath = "data/blog.db"

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Revision{},
		&Category{},
		&Tag{},
		&Media{},
		&Comment{},
	}
}

// IsPostgresURL reports whether the URL points to a hosted Postgres database.
func IsPostgresURL(databaseURL string) bool {
	trimmed := strings.TrimSpace(databaseURL)
	return strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://")
}

// Open connects to Postgres for postgres:// URLs and to a sqlite file otherwise.
// Unique violations are translated to gorm.ErrDuplicatedKey.
func Open(databaseURL string, logMode logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logMode),
	}

	if IsPostgresURL(databaseURL) {
		return gorm.Open(postgres.Open(strings.TrimSpace(databaseURL)), cfg)
	}

	path := strings.TrimSpace(databaseURL)
	if path == "" {
		path = defaultDatabasePath
	}
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
	}

	return gorm.Open(sqlite.Open(path), cfg)
}

// Migrate 自动迁移模式，为核心模型创建表。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(Models()...)
}

// Init 初始化数据库连接并执行自动迁移。
func Init(databaseURL string, logMode logger.LogLevel) (*gorm.DB, error) {
	gdb, err := Open(databaseURL, logMode)
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
