package config

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `json:"server"`
	NFSe     NFSeConfig     `json:"nfse"`
	Log      LogConfig      `json:"log"`
	Security SecurityConfig `json:"security"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int    `json:"port"`
	Environment  string `json:"environment"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// NFSeConfig holds the upstream distribution API configuration.
// CertificateBase64 and CertificatePassword are secrets and are never serialized.
type NFSeConfig struct {
	BaseURL             string        `json:"base_url"`
	CertificateBase64   string        `json:"-"`
	CertificatePassword string        `json:"-"`
	CABundleBase64      string        `json:"-"`
	Timeout             time.Duration `json:"timeout"`
	MinTLSVersion       uint16        `json:"min_tls_version"`
	UserAgent           string        `json:"user_agent"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BurstSize         int           `json:"burst_size"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
}

// Enabled reports whether inbound rate limiting is active.
func (r RateLimitConfig) Enabled() bool {
	return r.RequestsPerMinute > 0
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	minTLS, err := parseTLSVersion(getEnv("NFSE_MIN_TLS_VERSION", "1.2"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvAsInt("PORT", 8000),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 30),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 90),
			IdleTimeout:  getEnvAsInt("IDLE_TIMEOUT", 120),
		},
		NFSe: NFSeConfig{
			BaseURL:             strings.TrimRight(getEnv("NFSE_BASE_URL", ""), "/"),
			CertificateBase64:   strings.TrimSpace(getEnv("NFSE_CERT_PFX_BASE64", "")),
			CertificatePassword: getEnv("NFSE_CERT_PASSWORD", ""),
			CABundleBase64:      strings.TrimSpace(getEnv("NFSE_CA_BUNDLE_BASE64", "")),
			Timeout:             getEnvAsDuration("NFSE_TIMEOUT", 60*time.Second),
			MinTLSVersion:       minTLS,
			UserAgent:           getEnv("NFSE_USER_AGENT", "nfse-gateway/1.0"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 120),
				BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 20),
				CleanupInterval:   time.Duration(getEnvAsInt("RATE_LIMIT_CLEANUP", 60)) * time.Second,
			},
			CORS: CORSConfig{
				AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
				AllowCredentials: false,
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the upstream settings and that a response can outlive the upstream call.
// A WRITE_TIMEOUT of zero disables the write deadline.
func (c *Config) Validate() error {
	if err := c.NFSe.Validate(); err != nil {
		return err
	}
	write := time.Duration(c.Server.WriteTimeout) * time.Second
	if write > 0 && write <= c.NFSe.Timeout {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must be greater than NFSE_TIMEOUT (%s)", write, c.NFSe.Timeout)
	}
	return nil
}

// Validate checks that everything the secure client needs is present.
func (n NFSeConfig) Validate() error {
	if n.BaseURL == "" {
		return fmt.Errorf("NFSE_BASE_URL is required")
	}
	u, err := url.Parse(n.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("NFSE_BASE_URL must be an absolute http(s) URL, got %q", n.BaseURL)
	}
	if n.CertificateBase64 == "" {
		return fmt.Errorf("NFSE_CERT_PFX_BASE64 is required")
	}
	if n.CertificatePassword == "" {
		return fmt.Errorf("NFSE_CERT_PASSWORD is required")
	}
	if n.Timeout <= 0 {
		return fmt.Errorf("NFSE_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func parseTLSVersion(v string) (uint16, error) {
	switch strings.TrimSpace(v) {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("NFSE_MIN_TLS_VERSION must be 1.2 or 1.3, got %q", v)
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
