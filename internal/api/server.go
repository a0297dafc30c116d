package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/docs"
	"github.com/nexconsult/nfse-gateway/internal/api/handlers"
	"github.com/nexconsult/nfse-gateway/internal/api/middleware"
	"github.com/nexconsult/nfse-gateway/internal/config"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server represents the HTTP server
type Server struct {
	Router      *gin.Engine
	config      *config.Config
	logger      *logrus.Logger
	services    *services.Container
	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, logger *logrus.Logger, services *services.Container) *Server {
	server := &Server{
		config:   cfg,
		logger:   logger,
		services: services,
	}

	server.setupRouter()
	return server
}

// Close releases background resources held by the middleware.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// setupRouter configures the router with all routes and middleware
func (s *Server) setupRouter() {
	s.Router = gin.New()
	s.Router.HandleMethodNotAllowed = true

	// Global middleware
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Logger(s.logger, s.services.Metrics))
	s.Router.Use(middleware.Recovery(s.logger))
	s.Router.Use(middleware.CORS(s.config.Security.CORS))
	s.Router.Use(middleware.Security())

	healthHandler := handlers.NewHealthHandler(s.services, s.logger)

	// Probes and metrics are not rate limited
	s.Router.GET("/", healthHandler.Root)
	s.Router.GET("/health/live", healthHandler.GetLiveness)
	s.Router.GET("/health/ready", healthHandler.GetReadiness)
	s.Router.GET("/metrics", handlers.NewMetricsHandler(s.services.Metrics, s.logger).GetMetrics)

	if !s.config.IsProduction() {
		docs.SwaggerInfo.Version = handlers.Version
		s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	s.rateLimiter = middleware.NewRateLimiter(s.config.Security.RateLimit)

	nfseHandler := handlers.NewNFSeHandler(s.services.NFSeService, s.logger)
	nfse := s.Router.Group("/nfse", s.rateLimiter.Middleware())
	{
		nfse.GET("/distribuicao", nfseHandler.GetDistribuicao)
		nfse.GET("/documento", nfseHandler.GetDocumento)
	}

	s.Router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:     "Recurso não encontrado",
			Code:      models.CodeNotFound,
			Status:    http.StatusNotFound,
			RequestID: c.GetString("request_id"),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})

	s.Router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
			Error:     "Método não permitido",
			Code:      models.CodeMethodNotAllowed,
			Detail:    c.Request.Method + " is not allowed for this resource",
			Status:    http.StatusMethodNotAllowed,
			RequestID: c.GetString("request_id"),
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})
}
