package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/internal/logger"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNSU(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"5", 5, false},
		{" 42 ", 42, false},
		{"+7", 7, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"", 0, true},
		{"   ", 0, true},
		{"-1", 0, true},
		{"1e3", 0, true},
		{"abc", 0, true},
		{"9223372036854775808", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseNSU(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLote(t *testing.T) {
	for _, raw := range []string{"", "true", "TRUE", "1", "t", "yes", "on"} {
		got, err := ParseLote(raw)
		require.NoError(t, err, raw)
		assert.True(t, got, raw)
	}
	for _, raw := range []string{"false", "False", "0", "f", "no", "off"} {
		got, err := ParseLote(raw)
		require.NoError(t, err, raw)
		assert.False(t, got, raw)
	}

	_, err := ParseLote("talvez")
	var bad *errBadRequest
	require.True(t, errors.As(err, &bad))
	assert.Equal(t, models.CodeInvalidLote, bad.code)
}

// stubService records the query it receives and returns canned results.
type stubService struct {
	query  models.DistribuicaoQuery
	result *services.DistribuicaoResult
	doc    *services.Document
	err    error
}

func (s *stubService) Distribuicao(_ context.Context, q models.DistribuicaoQuery) (*services.DistribuicaoResult, error) {
	s.query = q
	return s.result, s.err
}

func (s *stubService) Documento(_ context.Context, q models.DistribuicaoQuery) (*services.Document, error) {
	s.query = q
	return s.doc, s.err
}

func (s *stubService) ResolveURL(q models.DistribuicaoQuery) string {
	return "https://adn.test/DFe/" + q.NSUString()
}

func (s *stubService) Health() map[string]interface{} {
	return map[string]interface{}{"status": "healthy"}
}

func serve(handler gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetDistribuicao_NormalizesCNPJ(t *testing.T) {
	stub := &stubService{result: &services.DistribuicaoResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := NewNFSeHandler(stub, logger.Discard())

	rec := serve(h.GetDistribuicao, "/?nsu=3&cnpjConsulta=11.222.333%2F0001-81&lote=0")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, models.DistribuicaoQuery{NSU: 3, CNPJConsulta: "11222333000181", Lote: false}, stub.query)
}

func TestGetDistribuicao_ForwardsInvalidCNPJ(t *testing.T) {
	stub := &stubService{result: &services.DistribuicaoResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := NewNFSeHandler(stub, logger.Discard())

	rec := serve(h.GetDistribuicao, "/?nsu=3&cnpjConsulta=123")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123", stub.query.CNPJConsulta)
	assert.True(t, stub.query.Lote)
}

func TestGetDistribuicao_AlphanumericCNPJ(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"valid is unmasked", "12.ABC.345%2F01DE-35", "12ABC34501DE35"},
		{"invalid is forwarded as received", "12.ABC.345%2F01DE-36", "12.ABC.345/01DE-36"},
		{"lowercase is forwarded as received", "12.abc.345%2F01de-35", "12.abc.345/01de-35"},
		{"surrounding blanks kept on invalid", "%20x1%20", " x1 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubService{result: &services.DistribuicaoResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
			h := NewNFSeHandler(stub, logger.Discard())

			rec := serve(h.GetDistribuicao, "/?nsu=1&cnpjConsulta="+tt.raw)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, stub.query.CNPJConsulta)
		})
	}
}

func TestGetDistribuicao_LogsFormattedCNPJ(t *testing.T) {
	var out bytes.Buffer
	stub := &stubService{result: &services.DistribuicaoResult{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := NewNFSeHandler(stub, logger.NewWithOutput("info", "json", &out))

	rec := serve(h.GetDistribuicao, "/?nsu=1&cnpjConsulta=11222333000181")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "11.222.333/0001-81", entry["cnpj"])
}

func TestGetDocumento_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"configuration", services.ErrConfiguration, http.StatusInternalServerError, models.CodeConfigError},
		{"upstream status", &services.UpstreamError{StatusCode: http.StatusServiceUnavailable, URL: "u", Body: []byte("busy")}, http.StatusServiceUnavailable, models.CodeUpstreamError},
		{"transport", &services.UpstreamError{URL: "u", Err: errors.New("dial tcp: connection refused")}, http.StatusInternalServerError, models.CodeUpstreamUnavailable},
		{"not found", &services.DocumentNotFoundError{URL: "u", Envelope: []byte(`{"LoteDFe":[]}`), Err: services.ErrNoCandidate}, http.StatusNotFound, models.CodeDocumentNotFound},
		{"invalid envelope", &services.InvalidEnvelopeError{URL: "u", Body: []byte("oops"), Err: errors.New("invalid character")}, http.StatusBadGateway, models.CodeInvalidUpstreamResponse},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, models.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewNFSeHandler(&stubService{err: tt.err}, logger.Discard())

			rec := serve(h.GetDocumento, "/?nsu=1")

			require.Equal(t, tt.wantStatus, rec.Code)
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.NotEmpty(t, body.Detail)
		})
	}
}

func TestGetDocumento_OmitsEmptyChaveAcesso(t *testing.T) {
	stub := &stubService{doc: &services.Document{XML: "<a/>", Strategy: services.StrategyRaw}}
	h := NewNFSeHandler(stub, logger.Discard())

	rec := serve(h.GetDocumento, "/?nsu=12")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="nfse_12.xml"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, services.StrategyRaw, rec.Header().Get(HeaderDecodeStrategy))
	assert.Empty(t, rec.Header().Get(HeaderChaveAcesso))
	assert.Equal(t, "<a/>", rec.Body.String())
}

func TestRetorno(t *testing.T) {
	assert.Nil(t, retorno(nil))
	assert.Equal(t, json.RawMessage(`{"a":1}`), retorno([]byte(`{"a":1}`)))
	assert.Equal(t, "plain", retorno([]byte("plain")))
}
