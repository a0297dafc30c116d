package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/nexconsult/nfse-gateway/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	defaultJSONContentType = "application/json; charset=utf-8"
	xmlContentType         = "application/xml; charset=utf-8"

	HeaderDecodeStrategy = "X-NFSe-Decode-Strategy"
	HeaderChaveAcesso    = "X-NFSe-Chave-Acesso"
)

// errBadRequest is a validation failure for a query parameter
type errBadRequest struct {
	code   string
	detail string
}

func (e *errBadRequest) Error() string { return e.detail }

// NFSeHandler handles the distribution and document endpoints
type NFSeHandler struct {
	nfseService services.NFSeServiceInterface
	logger      *logrus.Logger
}

// NewNFSeHandler creates a new NFS-e handler
func NewNFSeHandler(nfseService services.NFSeServiceInterface, logger *logrus.Logger) *NFSeHandler {
	return &NFSeHandler{
		nfseService: nfseService,
		logger:      logger,
	}
}

// GetDistribuicao relays the distribution envelope for an NSU
// @Summary Distribution envelope
// @Description Calls GET /DFe/{nsu} on the NFS-e national API over mutual TLS and returns the upstream body unchanged
// @Tags NFS-e
// @Produce json
// @Param nsu query int true "Sequence number (NSU)" minimum(0) example(5)
// @Param cnpjConsulta query string false "CNPJ or CPF of the queried taxpayer" example(11222333000181)
// @Param lote query bool false "Request a batch of documents" default(true)
// @Success 200 {object} models.DistribuicaoEnvelope
// @Failure 400 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /nfse/distribuicao [get]
func (h *NFSeHandler) GetDistribuicao(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	query, err := h.parseQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.nfseService.Distribuicao(c.Request.Context(), query)
	if err != nil {
		h.fail(c, query, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"nsu":        query.NSU,
		"cnpj":       utils.FormatCNPJ(query.CNPJConsulta),
		"status":     result.StatusCode,
		"duration":   time.Since(start),
	}).Info("Distribution envelope relayed")

	contentType := result.ContentType
	if contentType == "" {
		contentType = defaultJSONContentType
	}
	c.Data(result.StatusCode, contentType, result.Body)
}

// GetDocumento returns the decoded XML of the first document in the envelope
// @Summary NFS-e XML document
// @Description Fetches the distribution envelope and decodes the ArquivoXml of its first record (gzip+base64, base64 or raw XML)
// @Tags NFS-e
// @Produce xml
// @Produce json
// @Param nsu query int true "Sequence number (NSU)" minimum(0) example(5)
// @Param cnpjConsulta query string false "CNPJ or CPF of the queried taxpayer" example(11222333000181)
// @Param lote query bool false "Request a batch of documents" default(true)
// @Success 200 {string} string "Decoded XML"
// @Header 200 {string} X-NFSe-Decode-Strategy "gzip+base64, base64 or raw"
// @Header 200 {string} X-NFSe-Chave-Acesso "Access key of the decoded record"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /nfse/documento [get]
func (h *NFSeHandler) GetDocumento(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	query, err := h.parseQuery(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	doc, err := h.nfseService.Documento(c.Request.Context(), query)
	if err != nil {
		h.fail(c, query, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"nsu":        query.NSU,
		"cnpj":       utils.FormatCNPJ(query.CNPJConsulta),
		"strategy":   doc.Strategy,
		"bytes":      len(doc.XML),
		"duration":   time.Since(start),
	}).Info("Document served")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="nfse_%s.xml"`, query.NSUString()))
	c.Header(HeaderDecodeStrategy, doc.Strategy)
	if doc.Record.ChaveAcesso != "" {
		c.Header(HeaderChaveAcesso, doc.Record.ChaveAcesso)
	}
	c.Data(http.StatusOK, xmlContentType, []byte(doc.XML))
}

// parseQuery validates nsu, lote and cnpjConsulta
func (h *NFSeHandler) parseQuery(c *gin.Context) (models.DistribuicaoQuery, error) {
	var query models.DistribuicaoQuery

	nsu, err := ParseNSU(c.Query("nsu"))
	if err != nil {
		return query, err
	}
	query.NSU = nsu

	lote, err := ParseLote(c.Query("lote"))
	if err != nil {
		return query, err
	}
	query.Lote = lote

	raw := c.Query("cnpjConsulta")
	cnpj, valid := utils.NormalizeTaxID(raw)
	if !valid {
		h.logger.WithFields(logrus.Fields{
			"request_id":   c.GetString("request_id"),
			"cnpjConsulta": raw,
		}).Warn("cnpjConsulta is not a valid CNPJ or CPF, forwarding as received")
	}
	query.CNPJConsulta = cnpj

	return query, nil
}

// ParseNSU accepts a non-negative decimal integer, optionally surrounded by whitespace
func ParseNSU(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, &errBadRequest{code: models.CodeInvalidNSU, detail: "parâmetro nsu é obrigatório"}
	}

	nsu, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &errBadRequest{code: models.CodeInvalidNSU, detail: fmt.Sprintf("nsu %q não é um inteiro válido", raw)}
	}
	if nsu < 0 {
		return 0, &errBadRequest{code: models.CodeInvalidNSU, detail: fmt.Sprintf("nsu %d não pode ser negativo", nsu)}
	}
	return nsu, nil
}

// ParseLote parses the batch flag. An absent value means true.
func ParseLote(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return true, nil
	case "true", "1", "t", "yes", "on":
		return true, nil
	case "false", "0", "f", "no", "off":
		return false, nil
	default:
		return false, &errBadRequest{code: models.CodeInvalidLote, detail: fmt.Sprintf("lote %q não é um booleano válido", raw)}
	}
}

func (h *NFSeHandler) badRequest(c *gin.Context, err error) {
	code := models.CodeInvalidNSU
	var bad *errBadRequest
	if errors.As(err, &bad) {
		code = bad.code
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"query":      c.Request.URL.RawQuery,
		"error":      err.Error(),
	}).Warn("Invalid request parameters")

	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     "Parâmetros inválidos",
		Code:      code,
		Detail:    err.Error(),
		Status:    http.StatusBadRequest,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// fail maps service errors to the gateway error contract
func (h *NFSeHandler) fail(c *gin.Context, query models.DistribuicaoQuery, err error) {
	resp := models.ErrorResponse{
		Detail:    err.Error(),
		URL:       h.nfseService.ResolveURL(query),
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	}

	var (
		upstreamErr *services.UpstreamError
		notFound    *services.DocumentNotFoundError
		invalid     *services.InvalidEnvelopeError
	)

	switch {
	case errors.Is(err, services.ErrConfiguration):
		resp.Status = http.StatusInternalServerError
		resp.Error = "Cliente NFS-e não configurado"
		resp.Code = models.CodeConfigError
		resp.URL = ""

	case errors.As(err, &upstreamErr):
		resp.URL = upstreamErr.URL
		if upstreamErr.StatusCode > 0 {
			resp.Status = upstreamErr.StatusCode
			resp.Error = "Falha ao consultar a distribuição de NFS-e"
			resp.Code = models.CodeUpstreamError
			resp.Retorno = retorno(upstreamErr.Body)
		} else {
			resp.Status = http.StatusInternalServerError
			resp.Error = "Serviço de distribuição de NFS-e indisponível"
			resp.Code = models.CodeUpstreamUnavailable
			if upstreamErr.Err != nil {
				resp.Detail = upstreamErr.Err.Error()
			}
		}

	case errors.As(err, &notFound):
		resp.Status = http.StatusNotFound
		resp.Error = "Nenhum XML encontrado na resposta da distribuição"
		resp.Code = models.CodeDocumentNotFound
		resp.URL = notFound.URL
		resp.Retorno = retorno(notFound.Envelope)

	case errors.As(err, &invalid):
		resp.Status = http.StatusBadGateway
		resp.Error = "Resposta inválida do serviço de distribuição"
		resp.Code = models.CodeInvalidUpstreamResponse
		resp.URL = invalid.URL
		resp.Retorno = string(invalid.Body)

	default:
		resp.Status = http.StatusInternalServerError
		resp.Error = "Erro interno do servidor"
		resp.Code = models.CodeInternalError
	}

	entry := h.logger.WithFields(logrus.Fields{
		"request_id": resp.RequestID,
		"nsu":        query.NSU,
		"status":     resp.Status,
		"code":       resp.Code,
		"url":        resp.URL,
		"error":      err.Error(),
	})
	if resp.Status >= 500 {
		entry.Error("NFS-e request failed")
	} else {
		entry.Warn("NFS-e request failed")
	}

	c.JSON(resp.Status, resp)
}

// retorno embeds an upstream body as JSON when it parses, otherwise as text
func retorno(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
