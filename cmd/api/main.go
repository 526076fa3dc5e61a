package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "audittracker/api/swagger" // swagger docs
	"audittracker/internal/auth"
	"audittracker/internal/config"
	"audittracker/internal/database"
	"audittracker/internal/handler"
	"audittracker/internal/middleware"
	"audittracker/internal/policy"
	"audittracker/internal/repository"
	"audittracker/internal/service"
	"audittracker/internal/storage"
	"audittracker/internal/websocket"
	"audittracker/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Audit Tracker API
// @version         1.0
// @description     Vessel audits, findings and evidence behind role-based access control.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Stderr.WriteString("failed to read configs/.env: " + err.Error() + "\n")
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.LogLevel})
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	db, err := database.NewConnection(cfg.DB.ConnectionString(), database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	pol := policy.Default()
	if err := database.Seed(ctx, db, pol, database.AdminSeed{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	var denylist middleware.Denylist
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, token denylist lookups will fail open")
		}
		denylist = middleware.NewRedisDenylist(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("token manager")
	}
	guard := middleware.NewGuard(tokens, pol, denylist)

	files, err := storage.NewLocal(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory")
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log.Zerolog())
	go wsHub.Run(ctx.Done())

	// Set up dependencies (Repository -> Service -> Handler)
	tx := repository.NewTransactionManager(db)
	activityRepo := repository.NewActivityRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	pageRepo := repository.NewPageRepository(db)
	vesselRepo := repository.NewVesselRepository(db)
	companyRepo := repository.NewAuditCompanyRepository(db)
	partyRepo := repository.NewAuditPartyRepository(db)
	typeRepo := repository.NewAuditTypeRepository(db)
	auditorRepo := repository.NewAuditorRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	findingRepo := repository.NewFindingRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	var revoker service.TokenRevoker
	if denylist != nil {
		revoker = denylist
	}
	authService := service.NewAuthService(userRepo, roleRepo, tokens, revoker, tx, activityRepo)
	attachmentService := service.NewAttachmentService(repository.NewAttachmentRepository(db), findingRepo, auditRepo, files, tx, activityRepo, wsHub, cfg.Upload.MaxBytes)

	handlers := handler.Handlers{
		Users: handler.NewUserHandler(authService, service.NewUserService(userRepo, roleRepo, tx, activityRepo), guard,
			middleware.LoginRateLimiter(cfg.HTTP.LoginRatePerMinute)),
		Roles: handler.NewRoleHandler(
			service.NewRoleService(roleRepo, userRepo, tx, activityRepo),
			service.NewPermissionService(repository.NewPermissionRepository(db), pageRepo, tx, activityRepo),
			service.NewPageService(pageRepo, tx, activityRepo),
			guard),
		MasterData: handler.NewMasterDataHandler(handler.MasterDataServices{
			Vessels:        service.NewVesselService(vesselRepo, tx, activityRepo),
			AuditCompanies: service.NewAuditCompanyService(companyRepo, tx, activityRepo),
			AuditParties:   service.NewAuditPartyService(partyRepo, tx, activityRepo),
			AuditTypes:     service.NewAuditTypeService(typeRepo, tx, activityRepo),
			Auditors:       service.NewAuditorService(auditorRepo, companyRepo, tx, activityRepo),
		}, guard),
		Audits: handler.NewAuditHandler(service.NewAuditService(auditRepo, service.AuditReferences{
			Vessels:   vesselRepo,
			Types:     typeRepo,
			Parties:   partyRepo,
			Companies: companyRepo,
			Auditors:  auditorRepo,
		}, tx, activityRepo, wsHub), attachmentService, guard),
		Findings:  handler.NewFindingHandler(service.NewFindingService(findingRepo, auditRepo, settingsRepo, tx, activityRepo, wsHub), attachmentService, guard),
		Settings:  handler.NewSettingsHandler(service.NewSettingsService(settingsRepo, tx, activityRepo), guard),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepository(db)), guard),
		Activity:  handler.NewActivityHandler(service.NewActivityService(activityRepo), guard),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Set up Gin Router
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.SecureHeaders(cfg.App.IsProduction()), metrics.Handler())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	if !cfg.App.IsProduction() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.Static(cfg.Upload.URLPrefix, files.Root())

	// WebSocket endpoint
	var revoked websocket.RevocationChecker
	if denylist != nil {
		revoked = denylist
	}
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokens, pol, revoked)
	})

	handlers.Register(router.Group("/api"), guard)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
