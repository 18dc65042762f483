package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/model"
)

var (
	ErrCreateDatabase  = errors.New("cannot create a database")
	ErrMigrationFailed = errors.New("failed to migrate")
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
)

// Storage is the relational store of the blog. All methods are safe for
// concurrent use; consistency between requests is left to the database.
type Storage struct {
	db *gorm.DB
}

// Open connects to PostgreSQL when a DB host is configured and to the local
// SQLite file otherwise.
func Open(cfg *config.Config) (*Storage, error) {
	if cfg.UsePostgres() {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBSSLMode,
		)
		logging.Logger.WithField("host", cfg.DBHost).Info("Connecting to PostgreSQL database")
		return open(postgres.Open(dsn))
	}
	logging.Logger.WithField("path", cfg.Database).Info("Connecting to SQLite database")
	return OpenSQLite(cfg.Database)
}

// OpenSQLite opens (creating if needed) a SQLite database file with foreign
// key enforcement switched on.
func OpenSQLite(path string) (*Storage, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}
	return open(sqlite.Open(dsn))
}

func open(dialector gorm.Dialector) (*Storage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logging.Logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to connect to the database")
		return nil, errors.Wrap(ErrCreateDatabase, err.Error())
	}
	logging.Logger.Info("Database connection successful")
	return &Storage{db: db}, nil
}

// New wraps an already opened gorm connection.
func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates the schema, including the foreign key rules.
func (s *Storage) Migrate() error {
	logging.Logger.Info("Going to start database migrations")

	for _, m := range []interface{}{
		&model.User{},
		&model.Group{},
		&model.Post{},
		&model.Comment{},
		&model.Follow{},
	} {
		if err := s.db.AutoMigrate(m); err != nil {
			logging.Logger.WithFields(logrus.Fields{
				"model": fmt.Sprintf("%T", m),
				"error": err.Error(),
			}).Error("Migration failed")
			return errors.Wrap(ErrMigrationFailed, err.Error())
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm's missing-row error to ErrNotFound and wraps anything
// else with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}
