// Command admin_seed creates the initial admin account and the default
// fee rule set. It is idempotent and safe to re-run.
package main

import (
	"log"
	"os"

	"github.com/taqume/toycell-be/internal/config"
	"github.com/taqume/toycell-be/internal/models"
	"github.com/taqume/toycell-be/internal/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if repositories.DB != nil {
			if sqlDB, err := repositories.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if repositories.RedisClient != nil {
			repositories.RedisClient.Close()
		}
	}()

	seedAdmin(adminEmail, adminPassword)
	seedFeeRules()
}

func seedAdmin(email, password string) {
	var existing models.User
	if err := repositories.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Admin user already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Email:    email,
		Password: string(hashed),
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	}
	if err := repositories.DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Println("Admin account created")
}

// seedFeeRules installs a baseline rule per currency: 1% plus a fixed
// component, with a floor so micro transfers still pay something.
func seedFeeRules() {
	onePercent := decimal.NewFromInt(1)

	rules := []models.FeeRule{
		{
			Currency:      "TRY",
			MinAmount:     decimal.Zero,
			FeePercentage: onePercent,
			FixedFee:      decimal.NewFromInt(1),
			MinFee:        decimal.NewFromInt(1),
			Active:        true,
			Priority:      0,
		},
		{
			Currency:      "USD",
			MinAmount:     decimal.Zero,
			FeePercentage: onePercent,
			FixedFee:      decimal.RequireFromString("0.50"),
			MinFee:        decimal.RequireFromString("0.50"),
			Active:        true,
			Priority:      0,
		},
		{
			Currency:      "EUR",
			MinAmount:     decimal.Zero,
			FeePercentage: onePercent,
			FixedFee:      decimal.RequireFromString("0.50"),
			MinFee:        decimal.RequireFromString("0.50"),
			Active:        true,
			Priority:      0,
		},
	}

	for _, rule := range rules {
		var count int64
		repositories.DB.Model(&models.FeeRule{}).
			Where("currency = ? AND priority = ?", rule.Currency, rule.Priority).
			Count(&count)
		if count > 0 {
			log.Printf("Fee rule for %s already exists", rule.Currency)
			continue
		}
		if err := repositories.DB.Create(&rule).Error; err != nil {
			log.Fatalf("Failed to create fee rule for %s: %v", rule.Currency, err)
		}
		log.Printf("Fee rule for %s created", rule.Currency)
	}
}
