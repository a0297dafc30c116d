package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nexconsult/nfse-gateway/internal/api"
	"github.com/nexconsult/nfse-gateway/internal/config"
	"github.com/nexconsult/nfse-gateway/internal/logger"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/sirupsen/logrus"
)

// @title NFS-e Gateway API
// @version 1.0.0
// @description Gateway HTTP para a API de distribuição de NFS-e (ADN) com autenticação mTLS por certificado A1.

// @BasePath /
// @schemes http https

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NFS-e gateway...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// A bad certificate stops the process here
	serviceContainer, err := services.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}

	if cert := serviceContainer.Certificate(); cert != nil {
		logger.WithFields(logrus.Fields{
			"subject":   cert.Subject,
			"issuer":    cert.Issuer,
			"not_after": cert.NotAfter,
		}).Info("Client certificate loaded")
		if days := time.Until(cert.NotAfter).Hours() / 24; days < 30 {
			logger.WithField("days_left", int(days)).Warn("Client certificate expires soon")
		}
	}

	server := api.NewServer(cfg, logger, serviceContainer)
	defer server.Close()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
			"upstream":    cfg.NFSe.BaseURL,
		}).Info("Server starting...")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
