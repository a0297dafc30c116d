package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoints. Overridden at build time with -ldflags.
var Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	services  *services.Container
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *services.Container, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services:  services,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Root answers plain text for load balancers
// @Summary Service check
// @Tags Health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// GetLiveness handles liveness probe
// @Summary Liveness check
// @Description Check if the API is alive and responding
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":     true,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
		"version":   Version,
	})
}

// GetReadiness handles readiness probe. It never calls the upstream API.
// @Summary Readiness check
// @Description Ready when the mTLS client is built and the client certificate is inside its validity window
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	servicesHealth := h.services.Health()

	issues := make([]string, 0)
	for name, serviceHealth := range servicesHealth {
		healthMap, ok := serviceHealth.(map[string]interface{})
		if !ok {
			continue
		}
		if status, exists := healthMap["status"]; exists && status == "unhealthy" {
			issue := name + " is unhealthy"
			if msg, ok := healthMap["error"].(string); ok {
				issue = name + ": " + msg
			}
			issues = append(issues, issue)
		}
	}
	sort.Strings(issues)

	response := models.HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Version:     Version,
		Uptime:      time.Since(h.startTime).String(),
		Certificate: h.services.Certificate(),
	}
	if cfg := h.services.GetConfig(); cfg != nil {
		response.Upstream = cfg.NFSe.BaseURL
	}

	httpStatus := http.StatusOK
	if len(issues) > 0 {
		response.Status = "unhealthy"
		response.Issues = issues
		httpStatus = http.StatusServiceUnavailable

		h.logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"issues":     issues,
		}).Warn("Readiness check failed")
	}

	c.JSON(httpStatus, response)
}
