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

	"github.com/admision-uni/preinscripcion-api/internal/handler"
	"github.com/admision-uni/preinscripcion-api/internal/middleware"
	"github.com/admision-uni/preinscripcion-api/internal/repository"
	"github.com/admision-uni/preinscripcion-api/internal/service"
	"github.com/admision-uni/preinscripcion-api/internal/ubigeo"
	"github.com/admision-uni/preinscripcion-api/pkg/cache"
	"github.com/admision-uni/preinscripcion-api/pkg/config"
	"github.com/admision-uni/preinscripcion-api/pkg/database"
	"github.com/admision-uni/preinscripcion-api/pkg/logger"
	corsmiddleware "github.com/admision-uni/preinscripcion-api/pkg/middleware/cors"
	reqidmiddleware "github.com/admision-uni/preinscripcion-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The cache is an optimization; the API degrades to direct queries.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	resolver, err := ubigeo.NewFileResolver(cfg.Ubigeo.DataDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to load ubigeo dictionaries", "error", err)
	}

	submissionRepo := repository.NewPreinscripcionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr)
	notificationSvc := service.NewNotificationService(service.NewLogSender(logr), cfg.Notificacion, logr)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	codeGen := service.NewCodeGenerator(submissionRepo, cfg.Preinscripcion.CodeMaxAttempts)
	submissionSvc := service.NewPreinscripcionService(
		submissionRepo, codeGen, resolver, auditSvc, nil, logr,
		service.WithStatsCache(cacheRepo, cfg.Estadisticas.CacheTTL),
		service.WithCacheMetrics(metricsSvc),
		service.WithWelcomeNotifier(notificationSvc),
	)
	fichaSvc := service.NewFichaService()

	publicHandler := handler.NewPreinscripcionHandler(submissionSvc, fichaSvc, metricsSvc)
	adminHandler := handler.NewAdminHandler(submissionSvc, metricsSvc)
	ubigeoHandler := handler.NewUbigeoHandler(resolver)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/preinscripciones", publicHandler.Create)
		api.POST("/preinscripciones/consultar", publicHandler.Consultar)
		api.POST("/preinscripciones/verificar-documento", publicHandler.VerificarDocumento)
		api.PUT("/preinscripciones/:documento", publicHandler.Amend)
		api.GET("/preinscripciones/:documento/ficha", publicHandler.Ficha)

		api.GET("/ubigeos/departamentos", ubigeoHandler.Departamentos)
		api.GET("/ubigeos/provincias", ubigeoHandler.Provincias)
		api.GET("/ubigeos/distritos", ubigeoHandler.Distritos)

		admin := api.Group("/admin", middleware.AdminJWT(cfg.JWT))
		{
			admin.GET("/preinscripciones", adminHandler.List)
			admin.GET("/preinscripciones/:documento", adminHandler.Get)
			admin.PATCH("/preinscripciones/:documento/estado", adminHandler.Transition)
			admin.DELETE("/preinscripciones/:documento", adminHandler.Delete)
			admin.POST("/preinscripciones/:documento/restaurar", adminHandler.Restore)
			admin.GET("/estadisticas", adminHandler.Estadisticas)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}
