package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// models — таблицы приложения в порядке создания (родители раньше детей)
func models() []interface{} {
	return []interface{}{&entity.Question{}, &entity.Choice{}, &entity.Book{}}
}

// NewPostgresDB создает новое подключение к PostgreSQL
func NewPostgresDB(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// AutoMigrate создает недостающие таблицы и колонки. Версионирования схемы нет.
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Creating database tables...")
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	log.Info("Database tables are up to date")
	return nil
}

// ResetSchema удаляет таблицы приложения и создает их заново. Все данные теряются.
func ResetSchema(db *gorm.DB, log *logrus.Logger) error {
	tables := models()
	// Дети удаляются раньше родителей из-за внешнего ключа
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("drop table failed: %w", err)
		}
	}
	log.Warn("Database tables dropped")
	return AutoMigrate(db, log)
}

// Close закрывает пул соединений
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
