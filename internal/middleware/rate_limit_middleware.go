package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests — максимальное количество запросов за Window
	MaxRequests int
	// Window — временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix — префикс для ключей в Redis
	KeyPrefix string
}

// RateLimiter ограничивает частоту запросов по IP клиента, счётчики хранятся в кеше
type RateLimiter struct {
	cache repository.CacheRepository
	log   *logrus.Entry
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(cache repository.CacheRepository, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{cache: cache, log: log.WithField("component", "rate_limiter")}
}

// Limit возвращает Gin middleware с заданной конфигурацией.
// Ключ формируется из IP + шаблона маршрута.
func (rl *RateLimiter) Limit(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("%s:%s:%s", cfg.KeyPrefix, c.ClientIP(), path)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.cache.Increment(ctx, key)
		if err != nil {
			// При ошибке кеша пропускаем запрос (fail-open)
			rl.log.WithError(err).WithField("key", key).Warn("counter increment failed, allowing request")
			c.Next()
			return
		}

		// Первый запрос в окне задаёт TTL счётчика
		if count == 1 {
			if err := rl.cache.Expire(ctx, key, cfg.Window); err != nil {
				rl.log.WithError(err).WithField("key", key).Warn("failed to set counter TTL")
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > cfg.MaxRequests {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}

		c.Next()
	}
}
