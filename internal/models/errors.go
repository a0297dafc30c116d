package models

import "time"

// Error codes returned in ErrorResponse.Code
const (
	CodeInvalidNSU              = "INVALID_NSU"
	CodeInvalidLote             = "INVALID_LOTE"
	CodeConfigError             = "CONFIG_ERROR"
	CodeUpstreamError           = "UPSTREAM_ERROR"
	CodeUpstreamUnavailable     = "UPSTREAM_UNAVAILABLE"
	CodeInvalidUpstreamResponse = "INVALID_UPSTREAM_RESPONSE"
	CodeDocumentNotFound        = "DOCUMENT_NOT_FOUND"
	CodeNotFound                = "NOT_FOUND"
	CodeMethodNotAllowed        = "METHOD_NOT_ALLOWED"
	CodeRateLimited             = "RATE_LIMITED"
	CodeInternalError           = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response.
// Retorno carries the upstream payload for troubleshooting: a json.RawMessage when the
// upstream answered with JSON, otherwise the body as a string.
type ErrorResponse struct {
	Error     string      `json:"erro" example:"Falha ao consultar a distribuição de NFS-e"`
	Code      string      `json:"codigo" example:"UPSTREAM_ERROR"`
	Detail    string      `json:"detalhe,omitempty" example:"dial tcp: connection refused"`
	URL       string      `json:"url,omitempty" example:"https://adn.nfse.gov.br/contribuintes/DFe/5?lote=true"`
	Status    int         `json:"status,omitempty" example:"500"`
	Retorno   interface{} `json:"retorno,omitempty" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"7f1c0d3e-7d1b-4d55-9b8e-2f7a3c1b9e10"`
	Timestamp time.Time   `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string      `json:"path" example:"/nfse/documento"`
}

// HealthResponse represents the readiness probe response
type HealthResponse struct {
	Status      string           `json:"status" example:"healthy"`
	Timestamp   time.Time        `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version     string           `json:"version" example:"1.0.0"`
	Uptime      string           `json:"uptime" example:"2h30m45s"`
	Upstream    string           `json:"upstream" example:"https://adn.nfse.gov.br/contribuintes"`
	Certificate *CertificateInfo `json:"certificate,omitempty"`
	Issues      []string         `json:"issues,omitempty"`
}

// CertificateInfo describes the client identity presented upstream
type CertificateInfo struct {
	Subject      string    `json:"subject" example:"CN=EMPRESA LTDA:12345678000195"`
	Issuer       string    `json:"issuer" example:"CN=AC SOLUTI Multipla v5"`
	SerialNumber string    `json:"serial_number" example:"4d2a9c"`
	NotBefore    time.Time `json:"not_before"`
	NotAfter     time.Time `json:"not_after"`
}

// ValidAt reports whether t falls inside the certificate validity window.
func (c *CertificateInfo) ValidAt(t time.Time) bool {
	return c != nil && !t.Before(c.NotBefore) && !t.After(c.NotAfter)
}
