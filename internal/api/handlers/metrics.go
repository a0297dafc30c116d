package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/sirupsen/logrus"
)

// MetricsHandler serves the Prometheus registry
type MetricsHandler struct {
	metrics *services.MetricsService
	logger  *logrus.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(metrics *services.MetricsService, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// GetMetrics handles metrics request
// @Summary Prometheus metrics
// @Description Request, upstream, decoding and certificate expiry metrics in the Prometheus text format
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string "Prometheus exposition"
// @Router /metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	h.logger.WithField("request_id", c.GetString("request_id")).Debug("Serving metrics")
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
