package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/api/handler"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/api/middleware"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/domain"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/service"
	"github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/config"
	mongorepo "github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/db/mongo"
	redisinfra "github.com/omSolanki30/Smart-E-Lib-backend/internal/infrastructure/db/redis"
)

// Services bundles the wired core services so main can hand them to the
// scheduler as well.
type Services struct {
	Availability ports.AvailabilityService
	Overdue      ports.OverdueService
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the core services.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, clock ports.Clock, log zerolog.Logger) (*echo.Echo, *Services) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Repositories ---
	books := mongorepo.NewBookRepository(db)
	users := mongorepo.NewUserRepository(db)
	txns := mongorepo.NewTransactionRepository(db)
	syncLogs := mongorepo.NewSyncLogRepository(db)
	locker := redisinfra.NewBookLocker(rdb, cfg.Library.IssueLockTTL)

	// --- Services ---
	policy := domain.OverduePolicy{
		GraceDays: cfg.Library.GraceDays,
		DailyRate: cfg.Library.PenaltyRatePerDay,
	}
	authService := service.NewAuthService(users, clock, cfg.JWTSecret, 24*time.Hour)
	circulation := service.NewCirculationService(books, users, txns, locker, clock, policy, cfg.Library.DefaultLoanDays, log)
	overdue := service.NewOverdueService(users, txns, clock, policy, log)
	availability := service.NewAvailabilityService(books, txns, syncLogs, clock, log)
	catalog := service.NewCatalogService(books, txns, log)
	admin := service.NewAdminService(users, books, txns, syncLogs, clock, log)
	reports := service.NewReportService(txns, clock, policy, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(catalog)
	circulationHandler := handler.NewCirculationHandler(circulation)
	userHandler := handler.NewUserHandler(overdue)
	adminHandler := handler.NewAdminHandler(admin, availability, overdue)
	reportHandler := handler.NewReportHandler(reports)

	authMW := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleStudent)

	// --- Auth ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Catalog ---
	booksGroup := e.Group("/v1/books", authMW)
	booksGroup.GET("", bookHandler.List, anyRole)
	booksGroup.GET("/:id", bookHandler.Get, anyRole)
	booksGroup.POST("", bookHandler.Create, adminOnly)
	booksGroup.PUT("/:id", bookHandler.Update, adminOnly)
	booksGroup.DELETE("/:id", bookHandler.Delete, adminOnly)
	booksGroup.POST("/import", bookHandler.Import, adminOnly)

	// --- Circulation ---
	txnGroup := e.Group("/v1/transactions", authMW)
	txnGroup.GET("", circulationHandler.List, adminOnly)
	txnGroup.GET("/verify", circulationHandler.Verify, anyRole)
	txnGroup.GET("/:transaction_id", circulationHandler.Get, anyRole)
	txnGroup.POST("", circulationHandler.Issue, adminOnly)
	txnGroup.PUT("/:transaction_id/return", circulationHandler.Return, adminOnly)

	// --- Users ---
	usersGroup := e.Group("/v1/users", authMW)
	usersGroup.GET("/:id/summary", userHandler.Summary, anyRole)
	usersGroup.POST("/:id/rebuild-history", userHandler.Rebuild, adminOnly)

	// --- Admin ---
	adminGroup := e.Group("/v1/admin", authMW, adminOnly)
	adminGroup.GET("/me", adminHandler.Me)
	adminGroup.GET("/users", adminHandler.ListUsers)
	adminGroup.GET("/users/:id", adminHandler.GetUser)
	adminGroup.PUT("/users/:id", adminHandler.UpdateUserDetails)
	adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
	adminGroup.PUT("/users/:id/promote", adminHandler.PromoteUser)
	adminGroup.POST("/users/import", adminHandler.ImportUsers)
	adminGroup.GET("/stats", adminHandler.Stats)
	adminGroup.PUT("/book-sync", adminHandler.RunAvailabilitySync)
	adminGroup.PUT("/calculate-overdues", adminHandler.RunOverdueSweep)
	adminGroup.GET("/sync-logs", adminHandler.SyncLogs)

	// --- Reports ---
	reportGroup := e.Group("/v1/reports", authMW, adminOnly)
	reportGroup.GET("/overdue", reportHandler.Overdue)
	reportGroup.GET("/issued-stats", reportHandler.IssuedStats)
	reportGroup.GET("/issue-history", reportHandler.IssueHistory)
	reportGroup.GET("/most-issued-monthly", reportHandler.MostIssuedMonthly)

	// --- Probes & metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e, &Services{Availability: availability, Overdue: overdue}
}
