package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Драйверы хранилища
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	// Mode: режим Gin ("debug", "release", "test")
	Mode string `mapstructure:"mode"`
}

// StorageConfig выбирает реализацию хранилища
type StorageConfig struct {
	// Driver: "memory" или "postgres"
	Driver string `mapstructure:"driver"`
	// SeedBooks: загрузить стартовый каталог книг при запуске
	SeedBooks bool `mapstructure:"seed_books"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`
}

// CacheConfig содержит настройки кеширования записей в Redis
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds"`
}

// RateLimitConfig содержит настройки ограничения изменяющих запросов
type RateLimitConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxRequests int  `mapstructure:"max_requests"`
	WindowSec   int  `mapstructure:"window_sec"`
}

// CORSConfig содержит настройки CORS
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfigured сообщает, задан ли адрес Redis
func (r *RedisConfig) RedisConfigured() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// CacheTTL возвращает время жизни записи в кеше
func (c *CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Window возвращает окно подсчёта запросов
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()

	// 1. Значения по умолчанию: приложение запускается без файла и без внешних сервисов
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("server.mode", "debug")
	vip.SetDefault("storage.driver", StorageMemory)
	vip.SetDefault("storage.seed_books", true)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("cache.enabled", false)
	vip.SetDefault("cache.ttl_seconds", 300)
	vip.SetDefault("rate_limit.enabled", false)
	vip.SetDefault("rate_limit.max_requests", 60)
	vip.SetDefault("rate_limit.window_sec", 60)
	vip.SetDefault("cors.allow_origins", []string{"*"})
	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "json")

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")

	vip.BindEnv("storage.driver", "STORAGE_DRIVER")
	vip.BindEnv("storage.seed_books", "STORAGE_SEED_BOOKS")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("cache.enabled", "CACHE_ENABLED")
	vip.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")

	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("log.format", "LOG_FORMAT")

	// 3. Файл конфигурации необязателен
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			log.Printf("Файл конфигурации '%s' не прочитан (%v), используются переменные окружения/умолчания.", configPath, err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Storage.Driver)
	}

	if (c.Cache.Enabled || c.RateLimit.Enabled) && !c.Redis.RedisConfigured() {
		return fmt.Errorf("redis address is required when cache or rate limiting is enabled (check REDIS_ADDR env var)")
	}
	// ID хранилища в памяти начинаются с 1 после каждого перезапуска, общий кеш отдал бы чужие записи
	if c.Cache.Enabled && c.Storage.Driver == StorageMemory {
		return fmt.Errorf("cache.enabled requires storage.driver=%s", StoragePostgres)
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSec <= 0) {
		return fmt.Errorf("rate_limit.max_requests and rate_limit.window_sec must be positive")
	}
	return nil
}
