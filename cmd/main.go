package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shDavlatbek/bmsb/internal/apierror"
	"github.com/shDavlatbek/bmsb/internal/handler"
	"github.com/shDavlatbek/bmsb/internal/middleware"
	"github.com/shDavlatbek/bmsb/internal/model"
	"github.com/shDavlatbek/bmsb/internal/notify"
	"github.com/shDavlatbek/bmsb/internal/scope"
	"github.com/shDavlatbek/bmsb/pkg/config"
	"github.com/shDavlatbek/bmsb/pkg/database"
	"github.com/shDavlatbek/bmsb/pkg/jwtutil"
	"github.com/shDavlatbek/bmsb/pkg/logger"
	"github.com/shDavlatbek/bmsb/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting school platform backend...", zap.String("environment", cfg.Server.Env))

	// Initialize database and run migrations
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(model.AllModels()...); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize JWT signing
	jwtutil.Initialize(&cfg.JWT)

	// Seed the bootstrap superuser if configured
	if err := seedSuperuser(db, cfg, log); err != nil {
		log.Fatal("Failed to seed superuser", zap.Error(err))
	}

	// Shared collaborators
	policy := scope.NewPolicy()
	resolver := middleware.NewTenantResolver(db)
	mailer := notify.NewMailer(&cfg.Email, log)
	notifier := notify.NewNotifier(db, mailer, log)
	mismatch := cfg.Tenant.MismatchStatus

	// Handlers
	authHandler := handler.NewAuthHandler(db)
	schoolHandler := handler.NewSchoolHandler(db, policy, resolver, mismatch)
	menuHandler := handler.NewMenuHandler(db, policy, mismatch)
	bannerHandler := handler.NewBannerHandler(db, policy, mismatch)
	newsHandler := handler.NewNewsHandler(db, policy, mismatch, notifier)
	staffHandler := handler.NewStaffHandler(db, policy, mismatch)
	documentHandler := handler.NewDocumentHandler(db, policy, mismatch)
	directionHandler := handler.NewDirectionHandler(db, policy, mismatch)
	serviceHandler := handler.NewServiceHandler(db, policy, mismatch)
	faqHandler := handler.NewFAQHandler(db, policy, mismatch)
	vacancyHandler := handler.NewVacancyHandler(db, policy, mismatch)
	schoolLifeHandler := handler.NewSchoolLifeHandler(db, policy, mismatch)
	contactHandler := handler.NewContactHandler(db, policy, mismatch)
	subscriptionHandler := handler.NewSubscriptionHandler(db, policy, mismatch)

	// Initialize Echo framework
	e := echo.New()
	e.Validator = apierror.NewValidator()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.Authenticate)
	e.Use(resolver.Middleware())

	// Public routes - no tenant context required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.GET("/api/check-school", schoolHandler.CheckSchool)
	e.POST("/auth/login", authHandler.Login)

	api := e.Group("/api")

	// Public content routes, scoped by the resolved tenant
	api.GET("/schools", schoolHandler.List)
	api.GET("/schools/:slug", schoolHandler.Detail)
	api.GET("/menu", menuHandler.Tree)
	api.GET("/banners", bannerHandler.List)
	api.GET("/banners/:id", bannerHandler.Detail)
	api.GET("/news-categories", newsHandler.ListCategories)
	api.GET("/news", newsHandler.List)
	api.GET("/news/:slug", newsHandler.Detail)
	api.GET("/staff", staffHandler.List)
	api.GET("/staff/:slug", staffHandler.Detail)
	api.GET("/document-categories", documentHandler.ListCategories)
	api.GET("/documents", documentHandler.List)
	api.GET("/directions", directionHandler.List)
	api.GET("/directions/:slug", directionHandler.Detail)
	api.GET("/services", serviceHandler.List)
	api.GET("/services/:slug", serviceHandler.Detail)
	api.GET("/faq", faqHandler.List)
	api.GET("/vacancies", vacancyHandler.List)
	api.GET("/vacancies/:slug", vacancyHandler.Detail)
	api.GET("/school-life", schoolLifeHandler.List)
	api.GET("/school-life/:id", schoolLifeHandler.Detail)
	api.POST("/contact", contactHandler.Create)
	api.POST("/subscriptions", subscriptionHandler.Create)

	// Staff routes - authenticated school administrators
	mgmt := api.Group("", middleware.RequireAuth)
	mgmt.POST("/menu", menuHandler.Create)
	mgmt.PUT("/menu/:id", menuHandler.Update)
	mgmt.DELETE("/menu/:id", menuHandler.Delete)
	mgmt.POST("/banners", bannerHandler.Create)
	mgmt.PUT("/banners/:id", bannerHandler.Update)
	mgmt.DELETE("/banners/:id", bannerHandler.Delete)
	mgmt.POST("/news", newsHandler.Create)
	mgmt.PUT("/news/:id", newsHandler.Update)
	mgmt.DELETE("/news/:id", newsHandler.Delete)
	mgmt.POST("/staff", staffHandler.Create)
	mgmt.PUT("/staff/:id", staffHandler.Update)
	mgmt.DELETE("/staff/:id", staffHandler.Delete)
	mgmt.POST("/documents", documentHandler.Create)
	mgmt.PUT("/documents/:id", documentHandler.Update)
	mgmt.DELETE("/documents/:id", documentHandler.Delete)
	mgmt.POST("/services", serviceHandler.Create)
	mgmt.PUT("/services/:id", serviceHandler.Update)
	mgmt.DELETE("/services/:id", serviceHandler.Delete)
	mgmt.POST("/faq", faqHandler.Create)
	mgmt.PUT("/faq/:id", faqHandler.Update)
	mgmt.DELETE("/faq/:id", faqHandler.Delete)
	mgmt.POST("/vacancies", vacancyHandler.Create)
	mgmt.PUT("/vacancies/:id", vacancyHandler.Update)
	mgmt.DELETE("/vacancies/:id", vacancyHandler.Delete)
	mgmt.POST("/school-life", schoolLifeHandler.Create)
	mgmt.PUT("/school-life/:id", schoolLifeHandler.Update)
	mgmt.DELETE("/school-life/:id", schoolLifeHandler.Delete)
	mgmt.GET("/contact", contactHandler.List)
	mgmt.DELETE("/contact/:id", contactHandler.Delete)
	mgmt.GET("/subscriptions", subscriptionHandler.List)
	mgmt.DELETE("/subscriptions/:id", subscriptionHandler.Delete)
	mgmt.PUT("/schools/:slug", schoolHandler.Update)

	// Superuser routes - platform administration
	admin := e.Group("/admin", middleware.RequireAuth, middleware.RequireSuperuser)
	admin.POST("/schools", schoolHandler.Create)
	admin.DELETE("/schools/:slug", schoolHandler.Delete)
	admin.POST("/directions", directionHandler.Create)
	admin.PUT("/directions/:id", directionHandler.Update)
	admin.DELETE("/directions/:id", directionHandler.Delete)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// seedSuperuser creates the bootstrap superuser account when the
// credentials are configured and the account does not exist yet
func seedSuperuser(db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	if cfg.Superuser.Email == "" || cfg.Superuser.Password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", cfg.Superuser.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	user := model.User{
		Email:       cfg.Superuser.Email,
		FullName:    "Administrator",
		IsSuperuser: true,
	}
	user.IsActive = true
	if err := user.SetPassword(cfg.Superuser.Password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Info("Superuser seeded", zap.String("email", user.Email))
	return nil
}
