// Package repositories provides the data access layer. It owns the
// PostgreSQL and Redis connections and the repository implementations
// built on them.
package repositories

import (
	"fmt"
	"time"

	"github.com/taqume/toycell-be/internal/config"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB

// RedisClient backs the idempotency store, captcha store and wallet cache.
var RedisClient *redis.Client

// gormConfig builds the shared GORM configuration. TranslateError must
// stay on: the unique-violation handling in the user and wallet
// repositories matches against gorm.ErrDuplicatedKey, which the
// postgres driver only produces when translation is enabled.
func gormConfig() *gorm.Config {
	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}
}

// InitDB opens the PostgreSQL connection, runs migrations and connects
// to Redis.
func InitDB() error {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetEnv("DB_HOST", "localhost"),
		config.GetEnv("DB_USER", "postgres"),
		config.GetEnv("DB_PASSWORD", "postgres"),
		config.GetEnv("DB_NAME", "toycell"),
		config.GetEnv("DB_PORT", "5432"),
		config.GetEnv("DB_SSLMODE", "disable"),
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(config.GetIntEnv("DB_MAX_IDLE_CONNS", 10))
	sqlDB.SetMaxOpenConns(config.GetIntEnv("DB_MAX_OPEN_CONNS", 100))
	sqlDB.SetConnMaxLifetime(config.GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour))
	sqlDB.SetConnMaxIdleTime(config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute))

	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.FeeRule{},
		&models.Transfer{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	RedisClient = cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})

	return nil
}
