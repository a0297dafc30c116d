package services

import (
	"context"

	"github.com/nexconsult/nfse-gateway/internal/models"
)

// NFSeServiceInterface defines the interface for the distribution service
type NFSeServiceInterface interface {
	// Distribuicao returns the upstream envelope untouched
	Distribuicao(ctx context.Context, q models.DistribuicaoQuery) (*DistribuicaoResult, error)

	// Documento returns the decoded XML of the first candidate record
	Documento(ctx context.Context, q models.DistribuicaoQuery) (*Document, error)

	// ResolveURL returns the upstream URL used for q
	ResolveURL(q models.DistribuicaoQuery) string

	// Health returns service health status
	Health() map[string]interface{}
}

var _ NFSeServiceInterface = (*NFSeService)(nil)
