package handlers

import (
	"github.com/taqume/toycell-be/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

func HealthCheck(c *fiber.Ctx) error {
	dbStatus := "connected"
	if sqlDB, err := repositories.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		dbStatus = "unreachable"
	}

	redisStatus := "connected"
	if err := repositories.RedisClient.Ping(c.UserContext()).Err(); err != nil {
		redisStatus = "unreachable"
	}

	status := fiber.StatusOK
	overall := "ok"
	if dbStatus != "connected" || redisStatus != "connected" {
		status = fiber.StatusServiceUnavailable
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"services": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
