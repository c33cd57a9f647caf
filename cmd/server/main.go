// Package main is the entry point for the API server. It initializes
// the databases, wires the service layer, recovers any transfers left
// unresolved by a previous run and starts the HTTP server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/taqume/toycell-be/internal/config"
	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"
)

func main() {
	config.LoadEnv()

	logger := newLogger()

	if err := repositories.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer closeConnections(logger)

	app := fiber.New(fiber.Config{
		AppName:      "toycell-api",
		ReadTimeout:  config.GetDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: config.GetDurationEnv("HTTP_WRITE_TIMEOUT", 15*time.Second),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        config.GetIntEnv("RATE_LIMIT_AUTH", 5),
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	services := routes.SetupRoutes(app, logger)

	// Resolve transfers stranded by a crash before accepting traffic.
	recoverCtx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	if err := services.Transfer.Recover(recoverCtx); err != nil {
		logger.Error().Err(err).Msg("transfer recovery failed")
	}
	cancel()

	addr := ":" + config.GetEnv("PORT", "3000")
	logger.Info().Str("addr", addr).Msg("starting server")
	if err := app.Listen(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(config.GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if !config.IsProduction() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func closeConnections(logger zerolog.Logger) {
	if repositories.DB != nil {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close database connection")
			}
		}
	}
	if repositories.RedisClient != nil {
		if err := repositories.RedisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis connection")
		}
	}
}
