package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/config"
	redisRepo "github.com/yourusername/quiz-api/internal/repository/redis"
	"github.com/yourusername/quiz-api/pkg/database"
	"github.com/yourusername/quiz-api/pkg/logger"
)

var (
	configPath   string
	confirmReset bool
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the quiz-api PostgreSQL schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create missing tables (questions, choices, books)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB, _ *config.Config, log *logrus.Logger) error {
			return database.AutoMigrate(db, log)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all tables and create them again. All data is lost",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return errors.New("reset drops all data; pass --yes to confirm")
		}
		return withDB(func(db *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
			if err := database.ResetSchema(db, log); err != nil {
				return err
			}
			return clearCache(cmd.Context(), cfg, log)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config/config.yaml"), "Path to config file")
	resetCmd.Flags().BoolVar(&confirmReset, "yes", false, "Confirm dropping all tables")
	rootCmd.AddCommand(upCmd, resetCmd)
}

// withDB открывает подключение к БД из конфигурации и закрывает его после fn
func withDB(fn func(db *gorm.DB, cfg *config.Config, log *logrus.Logger) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		return errors.New("database is not configured (check DATABASE_HOST, DATABASE_DBNAME env vars)")
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), false)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("error closing database")
		}
	}()

	return fn(db, cfg, log)
}

// clearCache удаляет закешированные записи: после reset ID выдаются заново
func clearCache(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	cacheRepo, err := redisRepo.NewCacheRepo(client)
	if err != nil {
		return err
	}
	n, err := redisRepo.ClearResourceCache(ctx, cacheRepo, redisRepo.QuestionKeyPrefix, redisRepo.BookKeyPrefix)
	if err != nil {
		return err
	}
	log.WithField("keys", n).Info("Record cache cleared")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
