package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/cmd/bootstrap"
	handlers "github.com/leon-madara/ResonaAI-sub003/internal/handler"
	"github.com/leon-madara/ResonaAI-sub003/pkg/config"
	"github.com/leon-madara/ResonaAI-sub003/pkg/events"
	"github.com/leon-madara/ResonaAI-sub003/pkg/logger"
	"github.com/leon-madara/ResonaAI-sub003/pkg/middleware"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := config.GlobalConfig.Validate(); err != nil {
		log.Fatalf("validate config: %v", err)
	}
	if err := logger.Init(&config.GlobalConfig.Log, config.GlobalConfig.Server.Mode); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	bootstrap.LogConfigInfo()

	service, err := bootstrap.Build(logger.Lg)
	if err != nil {
		logger.Fatal("service build failed", zap.Error(err))
	}
	defer service.Close()

	if config.GlobalConfig.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Cors(), middleware.RequestLogger(logger.Lg))

	// High-risk outcomes go to the crisis collaborator; until one is
	// attached, surface them in the log at warn level.
	events.GetBus().Subscribe(events.TypeHighRiskDetected, func(e events.Event) error {
		logger.Warn("high-risk session detected",
			zap.Any("session_id", e.Data["session_id"]),
			zap.Any("risk_level", e.Data["risk_level"]))
		return nil
	})

	h := handlers.NewHandlers(service.Engine, service.Streams, service.Cache, service.Registry, logger.Lg)
	h.RegisterRoutes(router, config.GlobalConfig.Server.APIPrefix, config.GlobalConfig.Server.MonitorPrefix)

	srv := &http.Server{
		Addr:    config.GlobalConfig.Server.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
}
