// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"bvest/internal/config"
	"bvest/internal/handlers"
	"bvest/internal/metrics"
	"bvest/internal/middleware"
	"bvest/internal/models"
	"bvest/internal/repositories"
	"bvest/internal/services/auth"
	"bvest/internal/services/compliance"
	"bvest/internal/services/listing"
	"bvest/internal/services/matching"
	"bvest/internal/services/notification"
	"bvest/internal/services/payment"
	"bvest/internal/services/pledge"
	"bvest/internal/services/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	listingRepo := repositories.NewListingRepository(db, repositories.CacheService)
	pledgeRepo := repositories.NewPledgeRepository(db)
	profileRepo := repositories.NewInvestorProfileRepository(db)
	claimsRepo := repositories.NewComplianceClaimsRepository(db)
	spendLedger := repositories.NewSpendLedger(db)

	// Platform tunables and the compliance gate
	platformCfg := config.LoadPlatformConfig()
	gate := compliance.NewGate(platformCfg)

	// Notification transport: kafka when brokers are configured,
	// otherwise log-only.
	dispatcher := notification.NewDispatcherFromEnv()

	// Metrics registry shared by all collectors
	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	pledgeMetrics := metrics.NewPledgeMetrics(registry)

	// Initialize services
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	listingService := listing.NewService(listingRepo, claimsRepo, gate, dispatcher)
	matchingService := matching.NewService(listingRepo, matching.Config{
		ReadinessFloor:    platformCfg.ReadinessFloor,
		HighInterestViews: platformCfg.HighInterestViews,
	})
	processor := payment.NewStripeProcessor()
	pledgeService := pledge.NewService(
		pledgeRepo, listingRepo, claimsRepo, spendLedger,
		gate, processor, dispatcher,
		pledge.Config{},
		pledgeMetrics,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	listingHandler := handlers.NewListingHandler(listingService)
	discoveryHandler := handlers.NewDiscoveryHandler(matchingService, profileRepo, dispatcher)
	profileHandler := handlers.NewProfileHandler(profileRepo)
	pledgeHandler := handlers.NewPledgeHandler(pledgeService, listingService, pledgeRepo)
	complianceHandler := handlers.NewComplianceHandler(claimsRepo)

	// Public routes
	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(registry)))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to the Bvest API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")
	api.Post("/register", userHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	// Payment processor callbacks carry their own signature check and
	// bypass user auth.
	api.Post("/webhooks/settlement", pledgeHandler.SettlementCallback)

	// Protected routes with auth middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	setupAccountRoutes(protected, authHandler, userHandler, complianceHandler)
	setupListingRoutes(protected, listingHandler)
	setupDiscoveryRoutes(protected, discoveryHandler, profileHandler)
	setupPledgeRoutes(protected, pledgeHandler)
	setupAdminRoutes(app, authMiddleware, listingHandler, pledgeHandler, complianceHandler)
}

func setupAccountRoutes(router fiber.Router, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler, complianceHandler *handlers.ComplianceHandler) {
	router.Get("/me", userHandler.GetMe)
	router.Get("/me/compliance", complianceHandler.GetMyClaims)
	router.Post("/change-password", middleware.HasPermission(models.PermissionChangePassword), authHandler.ChangePassword)
	router.Post("/logout", authHandler.LogoutUser)
}

func setupListingRoutes(router fiber.Router, h *handlers.ListingHandler) {
	listings := router.Group("/listings")

	listings.Get("/mine", middleware.HasPermission(models.PermissionListingWrite), h.ListMyListings)
	listings.Post("/", middleware.HasPermission(models.PermissionListingWrite), h.CreateListing)
	listings.Get("/:id", middleware.HasPermission(models.PermissionListingRead), h.GetListing)
	listings.Patch("/:id", middleware.HasPermission(models.PermissionListingWrite), h.UpdateListing)
	listings.Post("/:id/submit", middleware.HasPermission(models.PermissionListingWrite), h.SubmitListing)
	listings.Post("/:id/close", middleware.HasPermission(models.PermissionListingWrite), h.CloseListing)
}

func setupDiscoveryRoutes(router fiber.Router, discoveryHandler *handlers.DiscoveryHandler, profileHandler *handlers.ProfileHandler) {
	router.Get("/listings", middleware.HasPermission(models.PermissionListingRead), discoveryHandler.SearchListings)
	router.Get("/matches", middleware.HasPermission(models.PermissionMatchRead), discoveryHandler.GetMatches)

	profile := router.Group("/profile")
	profile.Get("/", profileHandler.GetProfile)
	profile.Put("/", middleware.HasPermission(models.PermissionProfileWrite), profileHandler.UpsertProfile)
}

func setupPledgeRoutes(router fiber.Router, h *handlers.PledgeHandler) {
	pledges := router.Group("/pledges")

	pledges.Get("/mine", middleware.HasPermission(models.PermissionPledgeRead), h.ListMyPledges)
	pledges.Post("/", middleware.HasPermission(models.PermissionPledgeWrite), h.CreatePledge)
	pledges.Get("/:id", middleware.HasPermission(models.PermissionPledgeRead), h.GetPledge)
	pledges.Get("/:id/audit", middleware.HasPermission(models.PermissionPledgeRead), h.GetAuditTrail)
	pledges.Post("/:id/decide", middleware.HasPermission(models.PermissionPledgeDecide), h.DecidePledge)
	pledges.Post("/:id/withdraw", middleware.HasPermission(models.PermissionPledgeWrite), h.WithdrawPledge)
	pledges.Post("/:id/settle", middleware.HasPermission(models.PermissionPledgeDecide), h.BeginSettlement)

	// Owner's view of pledges against one listing
	router.Get("/listings/:id/pledges", middleware.HasPermission(models.PermissionPledgeDecide), h.ListListingPledges)
}

func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, listingHandler *handlers.ListingHandler, pledgeHandler *handlers.PledgeHandler, complianceHandler *handlers.ComplianceHandler) {
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	admin.Post("/listings/:id/approve", middleware.HasPermission(models.PermissionWriteAdmin), listingHandler.ApproveListing)
	admin.Post("/listings/:id/reject", middleware.HasPermission(models.PermissionWriteAdmin), listingHandler.RejectListing)
	admin.Get("/pledges/stalled", middleware.HasPermission(models.PermissionReadAdmin), pledgeHandler.ListStalledSettlements)
	admin.Get("/users/:id/compliance", middleware.HasPermission(models.PermissionReadAdmin), complianceHandler.GetUserClaims)
	admin.Put("/users/:id/compliance", middleware.HasPermission(models.PermissionWriteAdmin), complianceHandler.UpsertUserClaims)
}
