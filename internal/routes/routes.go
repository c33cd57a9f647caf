// Package routes defines the API routing configuration. It wires the
// repositories, services and handlers together and applies the
// authentication middleware where required.
package routes

import (
	"encoding/hex"
	"log"

	"github.com/taqume/toycell-be/internal/config"
	"github.com/taqume/toycell-be/internal/handlers"
	"github.com/taqume/toycell-be/internal/middleware"
	"github.com/taqume/toycell-be/internal/repositories"
	"github.com/taqume/toycell-be/internal/repositories/cache"
	"github.com/taqume/toycell-be/internal/services/auth"
	"github.com/taqume/toycell-be/internal/services/fee"
	"github.com/taqume/toycell-be/internal/services/ledger"
	"github.com/taqume/toycell-be/internal/services/transfer"
	"github.com/taqume/toycell-be/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Services bundles the wired service layer so the entry point can run
// startup tasks (like transfer recovery) against the same instances the
// routes use.
type Services struct {
	Auth     auth.Service
	Ledger   ledger.Service
	Fee      fee.Service
	Transfer transfer.Service
}

// SetupRoutes configures all application routes and returns the wired
// services.
func SetupRoutes(app *fiber.App, logger zerolog.Logger) *Services {
	// Repositories
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	entryRepo := repositories.NewLedgerEntryRepository(repositories.DB)
	feeRuleRepo := repositories.NewFeeRuleRepository(repositories.DB)
	transferRepo := repositories.NewTransferRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB)

	walletCache := cache.NewWalletCache(repositories.RedisClient)
	idempotencyStore := cache.NewIdempotencyStore(repositories.RedisClient, 0)
	captchaStore := cache.NewCaptchaStore(repositories.RedisClient)

	cipher, err := utils.NewFieldCipher(fieldEncryptionKey())
	if err != nil {
		log.Fatalf("invalid FIELD_ENCRYPTION_KEY: %v", err)
	}

	// Services
	ledgerService := ledger.NewService(walletRepo, entryRepo, walletCache, logger)
	feeService := fee.NewService(feeRuleRepo, logger)
	transferService := transfer.NewService(ledgerService, feeService, transferRepo, idempotencyStore, transfer.Config{}, logger)
	authService := auth.NewService(userRepo, captchaStore, cipher, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService)
	transferHandler := handlers.NewTransferHandler(transferService)
	feeHandler := handlers.NewFeeHandler(feeService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)

	authMiddleware := middleware.NewAuthMiddleware(authService, logger)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Get("/captcha", authHandler.Captcha)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/fees/quote", feeHandler.Quote)

	// Authenticated endpoints
	authenticated := api.Group("/", authMiddleware.Handler)
	authenticated.Post("/logout", authHandler.Logout)
	authenticated.Post("/change-password", authHandler.ChangePassword)
	authenticated.Get("/profile", authHandler.Profile)

	wallets := authenticated.Group("/wallets")
	wallets.Post("/", walletHandler.CreateWallet)
	wallets.Get("/", walletHandler.ListWallets)
	wallets.Get("/:id", walletHandler.GetWallet)
	wallets.Post("/deposit", walletHandler.Deposit)
	wallets.Post("/withdraw", walletHandler.Withdraw)
	wallets.Get("/:id/history", transactionHandler.WalletHistory)

	transfers := authenticated.Group("/transfers")
	transfers.Post("/", transferHandler.CreateTransfer)
	transfers.Get("/", transferHandler.ListTransfers)
	transfers.Get("/:reference", transferHandler.GetTransfer)

	authenticated.Get("/transactions", transactionHandler.History)
	authenticated.Get("/transactions/statistics", transactionHandler.Statistics)

	// Admin endpoints
	admin := api.Group("/admin", authMiddleware.Handler, middleware.AdminOnly)
	admin.Post("/fee-rules", feeHandler.CreateRule)
	admin.Get("/fee-rules", feeHandler.ListRules)
	admin.Put("/fee-rules/:id", feeHandler.UpdateRule)
	admin.Delete("/fee-rules/:id", feeHandler.DeleteRule)
	admin.Patch("/wallets/:id/active", walletHandler.SetWalletActive)
	admin.Get("/ledger/:reference", transactionHandler.EntriesByReference)

	return &Services{
		Auth:     authService,
		Ledger:   ledgerService,
		Fee:      feeService,
		Transfer: transferService,
	}
}

// fieldEncryptionKey reads the hex encoded AES key for column
// encryption. Falls back to a development-only key outside production.
func fieldEncryptionKey() []byte {
	encoded := config.GetEnv("FIELD_ENCRYPTION_KEY", "")
	if encoded == "" {
		if config.IsProduction() {
			log.Fatal("FIELD_ENCRYPTION_KEY is required in production")
		}
		encoded = "6368616e676520746869732070617373776f726420746f206120736563726574"
	}
	key, err := hex.DecodeString(encoded)
	if err != nil {
		log.Fatalf("FIELD_ENCRYPTION_KEY must be hex encoded: %v", err)
	}
	return key
}
