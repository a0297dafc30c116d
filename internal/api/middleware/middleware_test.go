package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexconsult/nfse-gateway/internal/config"
	"github.com/nexconsult/nfse-gateway/internal/logger"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/nexconsult/nfse-gateway/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/", nil)
		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", rec.Body.String())
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Discard()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := perform(r, http.MethodGet, "/panic", map[string]string{RequestIDHeader: "req-1"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.CodeInternalError, body.Code)
	assert.Equal(t, "req-1", body.RequestID)
	assert.Equal(t, "/panic", body.Path)
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins: []string{"https://painel.example.com"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Accept"},
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/nfse/documento", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/nfse/documento", map[string]string{"Origin": "https://painel.example.com"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://painel.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		rec := perform(r, http.MethodGet, "/nfse/documento", map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		rec := perform(r, http.MethodOptions, "/nfse/documento", map[string]string{"Origin": "https://painel.example.com"})
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestSecurity(t *testing.T) {
	r := gin.New()
	r.Use(Security())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestLogger(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewWithOutput("info", "json", &out)
	metrics := services.NewMetricsService()

	r := gin.New()
	r.Use(RequestID(), Logger(log, metrics))
	r.GET("/nfse/distribuicao", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	perform(r, http.MethodGet, "/nfse/distribuicao?nsu=x", map[string]string{RequestIDHeader: "req-log"})
	perform(r, http.MethodGet, "/nope", nil)

	var entry map[string]interface{}
	line, err := out.ReadBytes('\n')
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(line, &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "req-log", entry["request_id"])
	assert.Equal(t, "/nfse/distribuicao", entry["route"])
	assert.EqualValues(t, 400, entry["status"])

	body := scrape(t, metrics)
	assert.Contains(t, body, `nfse_gateway_http_requests_total{method="GET",route="/nfse/distribuicao",status="400"} 1`)
	assert.Contains(t, body, `nfse_gateway_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func scrape(t *testing.T, metrics *services.MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerMinute: 1, BurstSize: 2, CleanupInterval: time.Hour})
	defer rl.Stop()

	r := gin.New()
	r.Use(RequestID(), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/", nil).Code)

	rec := perform(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.CodeRateLimited, body.Code)

	assert.Equal(t, 1, rl.GetStats()["active_clients"])
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerMinute: 0})
	defer rl.Stop()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		rec := perform(r, http.MethodGet, "/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_Eviction(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerMinute: 60, BurstSize: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	rl.evictBefore(time.Now().Add(time.Second))

	assert.Equal(t, 0, rl.GetStats()["active_clients"])
}
