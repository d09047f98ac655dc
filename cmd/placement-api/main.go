package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/sooryaakilesh10/place-pro-platform-88/api/swagger"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/handler"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/middleware"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/service"
	"github.com/sooryaakilesh10/place-pro-platform-88/migrations"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/cache"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/config"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/database"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/logger"
	corsmiddleware "github.com/sooryaakilesh10/place-pro-platform-88/pkg/middleware/cors"
	reqidmiddleware "github.com/sooryaakilesh10/place-pro-platform-88/pkg/middleware/requestid"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/storage"
)

// @title Placement Tracker API
// @version 1.0.0
// @description Company outreach tracking with officer proposals and manager approval
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB, migrations.FS, logr); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	editRepo := repository.NewPendingEditRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, logr)
	companySvc := service.NewCompanyService(companyRepo, userRepo, cacheSvc, metricsSvc, logr)
	editSvc := service.NewEditService(companyRepo, editRepo, cacheSvc, metricsSvc, service.EditServiceConfig{
		RequireAssignment: cfg.Edits.RequireAssignment,
	}, logr)
	approvalSvc := service.NewApprovalService(editRepo, cacheSvc, metricsSvc, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, cacheSvc, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Companies: companyRepo,
		Edits:     editRepo,
		Events:    calendarRepo,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Logger:    logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:            cfg.Dashboard.CacheTTL,
			UpcomingEventsLimit: cfg.Dashboard.UpcomingEvents,
		},
	})

	exportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("prepare export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(exportStorage, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)
	reportSvc := service.NewReportService(companyRepo, userRepo, exportSvc, metricsSvc, service.ReportServiceConfig{
		CleanupInterval: cfg.Reports.CleanupInterval,
	}, logr)
	reportSvc.StartCleanup(ctx)

	created, err := userSvc.Bootstrap(ctx, service.BootstrapAdmin{
		Username: cfg.Bootstrap.AdminUsername,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logr.Info("bootstrap admin created", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, handler.RouterConfig{
		APIPrefix:  cfg.APIPrefix,
		EnableDocs: cfg.Env != config.EnvProduction,
	}, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Companies:    handler.NewCompanyHandler(companySvc, editSvc),
		PendingEdits: handler.NewPendingEditHandler(approvalSvc),
		Calendar:     handler.NewCalendarHandler(calendarSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Reports:      handler.NewReportHandler(reportSvc),
		Ops:          handler.NewMetricsHandler(metricsSvc, db),
	}, middleware.JWT(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
