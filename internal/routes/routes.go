// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"github.com/SaintAgents/saintagent-sub009/internal/handlers"
	"github.com/SaintAgents/saintagent-sub009/internal/middleware"
	"github.com/SaintAgents/saintagent-sub009/internal/repositories"
	"github.com/SaintAgents/saintagent-sub009/internal/services/mission"
	"github.com/SaintAgents/saintagent-sub009/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	walletRepo := repositories.NewWalletRepository(db)
	profileRepo := repositories.NewProfileRepository(db)

	var cache wallet.CacheOperator
	if repositories.CacheService != nil {
		cache = repositories.CacheService
	}

	walletService := wallet.NewService(walletRepo, profileRepo, cache, &wallet.NoopMetricsCollector{})
	missionService := mission.NewService(walletService)

	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(walletService)
	missionHandler := handlers.NewMissionHandler(missionService)

	app.Get("/health", handlers.HealthCheck)

	authenticated := app.Group("/api", middleware.AuthMiddleware)

	authenticated.Get("/wallet", walletHandler.GetWallet)
	authenticated.Get("/transactions", walletHandler.GetTransactions)

	w := authenticated.Group("/wallet")
	w.Post("/transfer", walletHandler.Transfer)
	w.Post("/lock", walletHandler.LockFunds)
	w.Post("/release", walletHandler.ReleaseFunds)

	admin := authenticated.Group("/admin", middleware.AdminAuthMiddleware)
	admin.Get("/wallets/:userID", adminHandler.GetWallet)
	admin.Post("/wallets/:userID/adjustment", adminHandler.Adjustment)
	admin.Post("/missions/complete", missionHandler.Complete)
}
