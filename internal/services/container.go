package services

import (
	"fmt"
	"time"

	"github.com/nexconsult/nfse-gateway/internal/config"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/sirupsen/logrus"
)

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	certificate *models.CertificateInfo
	NFSeService NFSeServiceInterface
	Metrics     *MetricsService
}

// NewContainer creates a new service container. It fails when the mTLS client cannot be built.
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config:  cfg,
		logger:  logger,
		Metrics: NewMetricsService(),
	}

	secure, err := NewSecureClient(cfg.NFSe, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize NFS-e client: %w", err)
	}
	container.certificate = secure.Certificate
	container.Metrics.SetCertificateExpiry(secure.Certificate.NotAfter)

	container.NFSeService = NewNFSeService(secure.Client, secure.BaseURL, NewDocumentDecoder(), container.Metrics, logger)

	return container, nil
}

// NewContainerWith assembles a container from already built parts.
func NewContainerWith(cfg *config.Config, logger *logrus.Logger, nfse NFSeServiceInterface, metrics *MetricsService, certificate *models.CertificateInfo) *Container {
	return &Container{
		config:      cfg,
		logger:      logger,
		certificate: certificate,
		NFSeService: nfse,
		Metrics:     metrics,
	}
}

// Certificate returns the client certificate presented upstream, if any.
func (c *Container) Certificate() *models.CertificateInfo {
	return c.certificate
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.NFSeService != nil {
		health["nfse"] = c.NFSeService.Health()
	} else {
		health["nfse"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  "service not initialized",
		}
	}

	switch {
	case c.certificate == nil:
		health["certificate"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  "no client certificate loaded",
		}
	case !c.certificate.ValidAt(time.Now()):
		health["certificate"] = map[string]interface{}{
			"status":    "unhealthy",
			"error":     "client certificate is outside its validity period",
			"not_after": c.certificate.NotAfter,
		}
	default:
		health["certificate"] = map[string]interface{}{
			"status":    "healthy",
			"not_after": c.certificate.NotAfter,
		}
	}

	return health
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
