package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/handler"
	"github.com/yourusername/quiz-api/internal/middleware"
	memRepo "github.com/yourusername/quiz-api/internal/repository/memory"
	pgRepo "github.com/yourusername/quiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-api/internal/repository/redis"
	"github.com/yourusername/quiz-api/internal/service"
	"github.com/yourusername/quiz-api/pkg/database"
	"github.com/yourusername/quiz-api/pkg/logger"
	"github.com/yourusername/quiz-api/pkg/metrics"
)

// stores объединяет хранилища ресурсов
type stores struct {
	questions repository.QuestionRepository
	books     repository.BookRepository
}

func main() {
	// .env необязателен: в контейнере переменные задаются окружением
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	appLog := logger.New(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем хранилище
	var db *gorm.DB
	var st stores
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err = database.NewPostgresDB(cfg.Database.PostgresConnectionString(), cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			appLog.WithError(err).Fatal("failed to connect to database")
		}
		if err := database.AutoMigrate(db, appLog); err != nil {
			appLog.WithError(err).Fatal("failed to migrate database")
		}
		st = stores{questions: pgRepo.NewQuestionRepo(db), books: pgRepo.NewBookRepo(db)}
	default:
		st = stores{questions: memRepo.NewQuestionRepo(), books: memRepo.NewBookRepo()}
	}
	appLog.WithField("driver", cfg.Storage.Driver).Info("storage initialized")

	// Redis нужен только для кеша и rate limiting
	var redisClient redis.UniversalClient
	var cacheRepo repository.CacheRepository
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLog.WithError(err).Fatal("failed to connect to Redis")
		}
		appLog.WithField("mode", cfg.Redis.Mode).Info("successfully connected to Redis")

		cr, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			appLog.WithError(err).Fatal("failed to initialize CacheRepo")
		}
		cacheRepo = cr
	}

	if cfg.Cache.Enabled {
		ttl := cfg.Cache.CacheTTL()
		st.questions = redisRepo.NewCachedResourceRepo(st.questions, cacheRepo, redisRepo.QuestionKeyPrefix, ttl, appLog)
		st.books = redisRepo.NewCachedResourceRepo(st.books, cacheRepo, redisRepo.BookKeyPrefix, ttl, appLog)
		appLog.WithField("ttl", ttl).Info("record cache enabled")
	}

	// Инициализируем сервисы
	questionService := service.NewResourceService(st.questions, "question", appLog)
	bookService := service.NewResourceService(st.books, "book", appLog)

	if cfg.Storage.SeedBooks {
		if _, err := bookService.Seed(ctx, entity.DefaultBooks()); err != nil {
			appLog.WithError(err).Fatal("failed to seed books")
		}
	}

	// Метрики пишутся в собственный реестр вместе с runtime-коллекторами
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := handler.RouterDeps{
		Questions:    questionService,
		Books:        bookService,
		Logger:       appLog,
		Metrics:      metrics.New("quiz_api", registry),
		Gatherer:     registry,
		AllowOrigins: cfg.CORS.AllowOrigins,
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(cacheRepo, appLog)
		deps.RateLimit = middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window(),
			KeyPrefix:   "ratelimit:write",
		}
	}
	router := handler.NewRouter(deps)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		appLog.WithField("port", cfg.Server.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server...")

	cancel()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("server forced to shutdown")
	}

	closeResources(appLog, db, redisClient)
	appLog.Info("server exited properly")
}

// closeResources закрывает подключения к БД и Redis, если они открывались
func closeResources(log *logrus.Logger, db *gorm.DB, redisClient redis.UniversalClient) {
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("error closing Redis client")
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("error closing database")
		}
	}
}
