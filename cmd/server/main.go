// Package main runs the activity booking HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trailbook/backend/config"
	"github.com/trailbook/backend/internal/activities"
	"github.com/trailbook/backend/internal/auth"
	"github.com/trailbook/backend/internal/companies"
	"github.com/trailbook/backend/internal/guides"
	"github.com/trailbook/backend/internal/invitations"
	"github.com/trailbook/backend/internal/maillog"
	"github.com/trailbook/backend/internal/middleware"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/internal/registrations"
	"github.com/trailbook/backend/pkg/database"
	"github.com/trailbook/backend/pkg/queue"
	"github.com/trailbook/backend/pkg/redis"
	"github.com/trailbook/backend/pkg/response"
	"github.com/trailbook/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		PhotosBucket:    cfg.AWS.PhotosBucket,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Invitations
	invitationRepo := invitations.NewRepository(pool)
	invitationSvc := invitations.NewService(invitationRepo, jobQueue, logger)

	// Activities (public catalog)
	activityRepo := activities.NewRepository(pool)

	// Registrations
	registrationRepo := registrations.NewRepository(pool)
	registrationSvc := registrations.NewService(activityRepo, registrationRepo, jobQueue, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, s3Client)

	activityHandler := activities.NewHandler(activityRepo, registrationRepo, s3Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, invitationSvc, registrationSvc, logger)
	authHandler := auth.NewHandler(authRepo, authSvc, invitationSvc, jwtService, logger)

	// Companies, staff, company activities
	companyRepo := companies.NewRepository(pool)
	companyHandler := companies.NewHandler(companyRepo, invitationSvc, logger)
	ownerHandler := companies.NewStaffHandler(companyHandler, companyRepo, invitationSvc, models.RoleCompanyOwner, logger)
	guideStaffHandler := companies.NewStaffHandler(companyHandler, companyRepo, invitationSvc, models.RoleGuide, logger)
	companyActivitiesHandler := companies.NewActivitiesHandler(companyHandler, activityRepo, companyRepo, s3Client, logger)

	// Guide surface
	guideHandler := guides.NewHandler(activityRepo, s3Client, logger)

	// Email delivery log (admin)
	maillogHandler := maillog.NewHandler(maillog.NewRepository(pool), logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public catalog
	router.GET("/", activityHandler.List)
	router.GET("/activities/:id", middleware.OptionalJWT(jwtService), activityHandler.GetByID)

	// Registration to an activity: anonymous callers are redirected to signup
	// carrying the activity, authenticated callers register directly.
	router.POST("/activities/:id/register", middleware.OptionalJWT(jwtService), registrationHandler.Register)

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.GET("/register", authHandler.RegisterPrefill)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Customer surface
		api.GET("/activities", registrationHandler.ListMine)
		api.DELETE("/activities/:id", registrationHandler.Cancel)

		// Company CRUD (administrators only)
		api.GET("/companies", middleware.RequireRole(models.RoleAdministrator), companyHandler.List)
		api.POST("/companies", middleware.RequireRole(models.RoleAdministrator), companyHandler.Create)
		api.GET("/companies/:id", middleware.RequireRole(models.RoleAdministrator), companyHandler.GetByID)
		api.PUT("/companies/:id", middleware.RequireRole(models.RoleAdministrator), companyHandler.Update)
		api.DELETE("/companies/:id", middleware.RequireRole(models.RoleAdministrator), companyHandler.Delete)

		// Outbound email audit trail
		api.GET("/emails", middleware.RequireRole(models.RoleAdministrator), maillogHandler.ListRecent)

		// Company staff and activities (administrator, or the owning company's
		// owner; checked per request against the addressed company)
		staff := api.Group("/companies/:id")
		staff.Use(middleware.RequireRole(models.RoleAdministrator, models.RoleCompanyOwner))
		{
			staff.GET("/invitations", companyHandler.ListInvitations)

			staff.GET("/users", ownerHandler.List)
			staff.POST("/users", ownerHandler.Invite)
			staff.GET("/users/:userID", ownerHandler.GetByID)
			staff.PUT("/users/:userID", ownerHandler.Update)
			staff.DELETE("/users/:userID", ownerHandler.Delete)

			staff.GET("/guides", guideStaffHandler.List)
			staff.POST("/guides", guideStaffHandler.Invite)
			staff.GET("/guides/:userID", guideStaffHandler.GetByID)
			staff.PUT("/guides/:userID", guideStaffHandler.Update)
			staff.DELETE("/guides/:userID", guideStaffHandler.Delete)

			staff.GET("/activities", companyActivitiesHandler.List)
			staff.POST("/activities", companyActivitiesHandler.Create)
			staff.GET("/activities/:activityID", companyActivitiesHandler.GetByID)
			staff.PUT("/activities/:activityID", companyActivitiesHandler.Update)
			staff.DELETE("/activities/:activityID", companyActivitiesHandler.Delete)
		}

		// Guide surface
		guideGroup := api.Group("/guides")
		guideGroup.Use(middleware.RequireRole(models.RoleGuide))
		{
			guideGroup.GET("/activities", guideHandler.ListMine)
			guideGroup.GET("/activities/:id/export", guideHandler.ExportParticipants)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
