package routes

import (
	"time"

	"fuelpay-backend/internal/adapters/http/handlers"
	"fuelpay-backend/internal/adapters/http/middleware"
	"fuelpay-backend/internal/adapters/persistence/repositories"
	"fuelpay-backend/internal/config"
	"fuelpay-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	customerRepo := repositories.NewCustomerRepository(db)
	employeeRepo := repositories.NewEmployeeRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	pumpRepo := repositories.NewPumpRepository(db)
	challengeRepo := repositories.NewChallengeRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	loyaltyRepo := repositories.NewLoyaltyRepository(db)
	idemRepo := repositories.NewIdempotencyRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(cfg.Push)
	verifyService := services.NewVerificationService(db, customerRepo, employeeRepo, challengeRepo, notifyService)
	authService := services.NewAuthService(customerRepo, employeeRepo, adminRepo, verifyService, cfg.JWT)
	accountService := services.NewAccountService(customerRepo, employeeRepo, pumpRepo)
	pumpService := services.NewPumpService(pumpRepo, employeeRepo)
	ledgerService := services.NewLedgerService(db, customerRepo, employeeRepo, pumpRepo, ledgerRepo, loyaltyRepo, idemRepo, notifyService)
	loyaltyService := services.NewLoyaltyService(db, customerRepo, pumpRepo, loyaltyRepo, notifyService)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, verifyService, cfg)
	customerHandler := handlers.NewCustomerHandler(accountService)
	employeeHandler := handlers.NewEmployeeHandler(accountService)
	pumpHandler := handlers.NewPumpHandler(pumpService, ledgerService)
	transferHandler := handlers.NewTransferHandler(ledgerService)
	topUpHandler := handlers.NewTopUpHandler(ledgerService)
	fuelSaleHandler := handlers.NewFuelSaleHandler(ledgerService)
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Customer routes
	customerRoutes := apiV1.Group("/customers")
	customerRoutes.Use(middleware.AuthMiddleware(cfg))
	setupCustomerRoutes(customerRoutes, customerHandler)

	// Employee routes
	employeeRoutes := apiV1.Group("/employees")
	employeeRoutes.Use(middleware.AuthMiddleware(cfg))
	setupEmployeeRoutes(employeeRoutes, employeeHandler)

	// Pump routes
	pumpRoutes := apiV1.Group("/pumps")
	setupPumpRoutes(pumpRoutes, pumpHandler, cfg)

	// Ledger routes (verified customers / employees only)
	setupLedgerRoutes(apiV1, transferHandler, topUpHandler, fuelSaleHandler, cfg)

	// Loyalty routes
	loyaltyRoutes := apiV1.Group("/loyalty")
	loyaltyRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoyaltyRoutes(loyaltyRoutes, loyaltyHandler)

	// Back-office dashboard
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly(), middleware.NoCacheHeaders())
	dashboardRoutes.Get("/", dashboardHandler.Stats)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Signup / login (5 req/min/IP)
	router.Post("/customer/signup", middleware.AuthRateLimiter(), handler.SignupCustomer)
	router.Post("/customer/login", middleware.AuthRateLimiter(), handler.LoginCustomer)
	router.Post("/employee/signup", middleware.AuthRateLimiter(), handler.SignupEmployee)
	router.Post("/employee/login", middleware.AuthRateLimiter(), handler.LoginEmployee)
	router.Post("/admin/login", middleware.AuthRateLimiter(), handler.LoginAdmin)

	// Password reset (3 req/min/IP - code spam + brute force)
	router.Post("/customer/forgot-password", middleware.StrictRateLimiter(), handler.ForgotPasswordCustomer)
	router.Post("/customer/reset-password", middleware.StrictRateLimiter(), handler.ResetPasswordCustomer)
	router.Post("/employee/forgot-password", middleware.StrictRateLimiter(), handler.ForgotPasswordEmployee)
	router.Post("/employee/reset-password", middleware.StrictRateLimiter(), handler.ResetPasswordEmployee)

	// Verification (authenticated, 3 req/min/IP)
	router.Post("/verify", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.Verify)
	router.Post("/resend-code", middleware.AuthMiddleware(cfg), middleware.StrictRateLimiter(), handler.ResendCode)

	router.Post("/logout", handler.Logout)
}

// setupCustomerRoutes configures customer routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	// Own profile (customer only, never cached)
	router.Get("/me", middleware.CustomerOnly(), middleware.NoCacheHeaders(), handler.Me)
	router.Put("/me", middleware.CustomerOnly(), handler.UpdateMe)
	router.Put("/me/password", middleware.CustomerOnly(), handler.ChangePassword)
	router.Put("/me/push-token", handler.RegisterPushToken)

	// Back office
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/:id", middleware.AdminOnly(), handler.Get)
}

// setupEmployeeRoutes configures employee routes
func setupEmployeeRoutes(router fiber.Router, handler *handlers.EmployeeHandler) {
	// Own profile
	router.Get("/me", middleware.EmployeeOnly(), handler.Me)
	router.Put("/me/password", middleware.EmployeeOnly(), handler.ChangePassword)

	// Back office
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/:id", middleware.AdminOnly(), handler.Get)
	router.Put("/:id/employment", middleware.AdminOnly(), handler.UpdateEmployment)
}

// setupPumpRoutes configures pump routes
func setupPumpRoutes(router fiber.Router, handler *handlers.PumpHandler, cfg *config.Config) {
	// Public map data, cacheable for 5 minutes
	router.Get("/locations", middleware.PublicCache(5*time.Minute), handler.Locations)

	// Authenticated
	router.Get("/", middleware.AuthMiddleware(cfg), handler.List)
	router.Get("/:id", middleware.AuthMiddleware(cfg), handler.Get)
	router.Get("/:id/staff", middleware.AuthMiddleware(cfg), middleware.EmployeeOrAdmin(), handler.Staff)
	router.Get("/:id/sales", middleware.AuthMiddleware(cfg), middleware.EmployeeOrAdmin(), handler.Sales)

	// Back office
	router.Post("/", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Create)
	router.Post("/:id/staff", middleware.AuthMiddleware(cfg), middleware.EmployeeOrAdmin(), handler.AddStaff)
	router.Put("/:id/manager", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.AssignManager)
}

// setupLedgerRoutes configures value-movement routes. Everything here
// sits behind VerifiedOnly: an unverified account can browse but never
// move value.
func setupLedgerRoutes(router fiber.Router, transferHandler *handlers.TransferHandler, topUpHandler *handlers.TopUpHandler, fuelSaleHandler *handlers.FuelSaleHandler, cfg *config.Config) {
	// Transfers (customer only)
	transferRoutes := router.Group("/transfers")
	transferRoutes.Use(middleware.AuthMiddleware(cfg), middleware.CustomerOnly(), middleware.VerifiedOnly(), middleware.NoCacheHeaders())
	transferRoutes.Get("/receiver", transferHandler.FindReceiver)
	transferRoutes.Post("/", transferHandler.Create)
	transferRoutes.Get("/", transferHandler.History)

	// Top-ups (customer only)
	topUpRoutes := router.Group("/topups")
	topUpRoutes.Use(middleware.AuthMiddleware(cfg), middleware.CustomerOnly(), middleware.VerifiedOnly(), middleware.NoCacheHeaders())
	topUpRoutes.Post("/", topUpHandler.Create)
	topUpRoutes.Get("/", topUpHandler.History)

	// Fuel sales: settlement by employees, history by customers
	fuelSaleRoutes := router.Group("/fuel-sales")
	fuelSaleRoutes.Use(middleware.AuthMiddleware(cfg), middleware.VerifiedOnly(), middleware.NoCacheHeaders())
	fuelSaleRoutes.Post("/", middleware.EmployeeOnly(), fuelSaleHandler.Settle)
	fuelSaleRoutes.Get("/my-sales", middleware.EmployeeOnly(), fuelSaleHandler.MySales)
	fuelSaleRoutes.Get("/employee/:id", middleware.EmployeeOrAdmin(), fuelSaleHandler.EmployeeSales)
	fuelSaleRoutes.Get("/", middleware.CustomerOnly(), fuelSaleHandler.CustomerHistory)
}

// setupLoyaltyRoutes configures loyalty routes
func setupLoyaltyRoutes(router fiber.Router, handler *handlers.LoyaltyHandler) {
	router.Get("/", middleware.CustomerOnly(), handler.ListPoints)
	router.Get("/:pumpId", middleware.CustomerOnly(), handler.GetPoints)
	router.Post("/:pumpId/redeem", middleware.CustomerOnly(), middleware.VerifiedOnly(), handler.Redeem)
	router.Put("/:pumpId/threshold", middleware.EmployeeOrAdmin(), handler.SetThreshold)
}
