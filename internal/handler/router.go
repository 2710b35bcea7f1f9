package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/handler/helper"
	"github.com/yourusername/quiz-api/internal/middleware"
	"github.com/yourusername/quiz-api/internal/service"
	"github.com/yourusername/quiz-api/pkg/metrics"
)

// RouterDeps содержит зависимости HTTP слоя
type RouterDeps struct {
	Questions *service.ResourceService[entity.Question, entity.Choice]
	Books     *service.ResourceService[entity.Book, entity.NoChild]
	Logger    *logrus.Logger

	// Metrics и Gatherer необязательны: без них /metrics не публикуется
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	// RateLimiter необязателен: ограничиваются только изменяющие запросы
	RateLimiter *middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	AllowOrigins []string
}

// NewRouter собирает Gin роутер со всеми маршрутами API
func NewRouter(deps RouterDeps) *gin.Engine {
	helper.UseJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(cors.New(corsConfig(deps.AllowOrigins)))

	var write []gin.HandlerFunc
	if deps.RateLimiter != nil {
		write = append(write, deps.RateLimiter.Limit(deps.RateLimit))
	}

	questionHandler := NewResourceHandler(deps.Questions, QuestionMapper(), deps.Logger)
	bookHandler := NewResourceHandler(deps.Books, BookMapper(), deps.Logger)
	exportHandler := NewExportHandler(deps.Questions, deps.Logger)

	// Вопросы: коллекция доступна по /questions/
	questionHandler.Register(router.Group("/questions"), "/", write...)

	// Варианты ответа вопроса
	router.GET("/choices/:id", middleware.ExtractID("id"), questionHandler.ListChildren)

	bookHandler.Register(router.Group("/books"), "", write...)

	router.GET("/export/questions", exportHandler.ExportQuestions)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
