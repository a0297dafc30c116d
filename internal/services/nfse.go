package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/sirupsen/logrus"
)

// DistribuicaoResult is a successful (2xx) answer of GET /DFe/{nsu}.
type DistribuicaoResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
	URL         string
	Duration    time.Duration
}

// NFSeService calls the distribution API and resolves documents.
type NFSeService struct {
	client  *resty.Client
	baseURL string
	decoder *DocumentDecoder
	metrics *MetricsService
	logger  *logrus.Logger
}

// NewNFSeService creates the service. client is shared by all requests and may be an mTLS
// client from NewSecureClient or a plain resty client in tests.
func NewNFSeService(client *resty.Client, baseURL string, decoder *DocumentDecoder, metrics *MetricsService, logger *logrus.Logger) *NFSeService {
	if decoder == nil {
		decoder = NewDocumentDecoder()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NFSeService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		decoder: decoder,
		metrics: metrics,
		logger:  logger,
	}
}

// ResolveURL builds the upstream URL for q. The same string is sent and reported in errors.
func (s *NFSeService) ResolveURL(q models.DistribuicaoQuery) string {
	values := url.Values{}
	if q.CNPJConsulta != "" {
		values.Set("cnpjConsulta", q.CNPJConsulta)
	}
	values.Set("lote", strconv.FormatBool(q.Lote))

	return s.baseURL + "/DFe/" + url.PathEscape(q.NSUString()) + "?" + values.Encode()
}

// Distribuicao performs GET /DFe/{nsu}. Non-2xx answers and transport failures are
// returned as *UpstreamError.
func (s *NFSeService) Distribuicao(ctx context.Context, q models.DistribuicaoQuery) (*DistribuicaoResult, error) {
	if q.NSU < 0 {
		return nil, fmt.Errorf("invalid NSU %d", q.NSU)
	}
	if s.client == nil || s.baseURL == "" {
		s.metrics.RecordUpstream(OutcomeConfigError, 0)
		return nil, fmt.Errorf("%w: distribution client is not configured", ErrConfiguration)
	}

	endpoint := s.ResolveURL(q)
	log := s.logger.WithFields(logrus.Fields{
		"nsu":  q.NSU,
		"lote": q.Lote,
		"url":  endpoint,
	})

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		Get(endpoint)
	duration := time.Since(start)

	if err != nil {
		s.metrics.RecordUpstream(OutcomeTransportError, duration)
		log.WithError(err).WithField("duration", duration).Error("Distribution request failed")
		return nil, &UpstreamError{URL: endpoint, Err: err}
	}

	if !resp.IsSuccess() {
		s.metrics.RecordUpstream(OutcomeHTTPError, duration)
		log.WithFields(logrus.Fields{
			"status":   resp.StatusCode(),
			"duration": duration,
		}).Warn("Distribution API returned an error status")
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode(),
			URL:        endpoint,
			Body:       resp.Body(),
			Err:        errors.New(resp.Status()),
		}
	}

	s.metrics.RecordUpstream(OutcomeSuccess, duration)
	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode(),
		"bytes":    len(resp.Body()),
		"duration": duration,
	}).Debug("Distribution request completed")

	return &DistribuicaoResult{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
		URL:         endpoint,
		Duration:    duration,
	}, nil
}

// Documento fetches the envelope and decodes its candidate record.
func (s *NFSeService) Documento(ctx context.Context, q models.DistribuicaoQuery) (*Document, error) {
	result, err := s.Distribuicao(ctx, q)
	if err != nil {
		return nil, err
	}

	envelope, err := ParseEnvelope(result.Body)
	if err != nil {
		return nil, &InvalidEnvelopeError{URL: result.URL, Body: result.Body, Err: err}
	}

	doc, err := s.decoder.Resolve(envelope)
	if err != nil {
		s.metrics.RecordDecode(StrategyNone)

		fields := logrus.Fields{
			"nsu":                  q.NSU,
			"status_processamento": envelope.StatusProcessamento,
			"records":              len(envelope.LoteDFe),
		}
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			fields["attempts"] = decodeErr.Error()
		}
		s.logger.WithFields(fields).Warn("No XML recovered from distribution envelope")

		return nil, &DocumentNotFoundError{URL: result.URL, Envelope: result.Body, Err: err}
	}

	s.metrics.RecordDecode(doc.Strategy)
	s.logger.WithFields(logrus.Fields{
		"nsu":          q.NSU,
		"strategy":     doc.Strategy,
		"record_index": doc.Index,
		"chave_acesso": doc.Record.ChaveAcesso,
	}).Info("Document resolved")

	return doc, nil
}

// Health reports whether the service can dispatch requests. It does not call upstream.
func (s *NFSeService) Health() map[string]interface{} {
	if s.client == nil || s.baseURL == "" {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  "distribution client is not configured",
		}
	}
	return map[string]interface{}{
		"status":   "healthy",
		"upstream": s.baseURL,
	}
}
