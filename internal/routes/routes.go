// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and groups
// routes by role.
package routes

import (
	"log"

	"earnedpay/internal/config"
	"earnedpay/internal/handlers"
	"earnedpay/internal/middleware"
	"earnedpay/internal/models"
	"earnedpay/internal/repositories"
	"earnedpay/internal/services/ledger"
	"earnedpay/internal/services/notification"
	"earnedpay/internal/services/payout"
	"earnedpay/internal/services/settlement"
	"earnedpay/internal/services/withdrawal"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories and the transaction boundary
	repos := repositories.NewRepos(db)
	uow := repositories.NewUnitOfWork(db)
	cache := repositories.CacheService

	// Payout gateway: mock mode unless a real UPI provider is configured
	gateway, err := payout.NewGateway(config.GetBoolEnv("UPI_MOCK_MODE", true))
	if err != nil {
		log.Fatalf("Failed to initialize payout gateway: %v", err)
	}
	notifier := notification.NewService()

	// Services
	ledgerService := ledger.NewService(repos, uow, cache)
	withdrawalService := withdrawal.NewService(repos, uow, cache, gateway, notifier)
	settlementService := settlement.NewService(repos, uow, cache)

	// Handlers
	workerHandler := handlers.NewWorkerHandler(repos.Workers, ledgerService, withdrawalService)
	employerHandler := handlers.NewEmployerHandler(repos.Employers, repos.Workers, repos.Ledgers, ledgerService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to EarnedPay API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})
	app.Get("/health", handlers.HealthCheck)

	// Protected routes with auth middleware
	api := app.Group("/api", middleware.Handler)

	// Worker surface
	worker := api.Group("/worker", middleware.RequireRole(models.RoleWorker))
	worker.Get("/profile", workerHandler.GetProfile)
	worker.Get("/balance", workerHandler.GetBalance)
	worker.Post("/withdraw", workerHandler.RequestWithdrawal)
	worker.Get("/withdrawals", workerHandler.GetWithdrawals)
	worker.Get("/withdrawals/:id", workerHandler.GetWithdrawalStatus)
	worker.Put("/upi", workerHandler.UpdateUPI)

	// Employer surface
	employer := api.Group("/employer", middleware.RequireRole(models.RoleEmployer))
	employer.Get("/profile", employerHandler.GetProfile)
	employer.Put("/profile", employerHandler.UpdateProfile)
	employer.Get("/workers", employerHandler.ListWorkers)
	employer.Post("/workers", employerHandler.AddWorker)
	employer.Get("/dashboard", employerHandler.GetDashboard)
	employer.Post("/attendance", employerHandler.SubmitAttendance)

	// Settlement surface (employer-only)
	settlements := api.Group("/settlements", middleware.RequireRole(models.RoleEmployer))
	settlements.Post("/process", settlementHandler.Process)
	settlements.Get("/", settlementHandler.List)
}
