package services

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nexconsult/nfse-gateway/internal/config"
	"github.com/nexconsult/nfse-gateway/internal/models"
	"github.com/sirupsen/logrus"
	"software.sslmate.com/src/go-pkcs12"
)

// SecureClient is the mTLS client bound to the distribution API. It is built once and
// shared by all requests.
type SecureClient struct {
	Client      *resty.Client
	BaseURL     string
	Certificate *models.CertificateInfo
}

// NewSecureClient decodes the PKCS#12 identity and returns a resty client that presents it
// over TLS with full chain validation. Every failure wraps ErrConfiguration.
func NewSecureClient(cfg config.NFSeConfig, logger *logrus.Logger) (*SecureClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	identity, leaf, err := LoadIdentity(cfg.CertificateBase64, cfg.CertificatePassword)
	if err != nil {
		return nil, err
	}

	rootCAs, err := loadRootCAs(cfg.CABundleBase64)
	if err != nil {
		return nil, err
	}

	minVersion := cfg.MinTLSVersion
	if minVersion < tls.VersionTLS12 {
		minVersion = tls.VersionTLS12
	}

	tlsConfig := &tls.Config{
		MinVersion:   minVersion,
		Certificates: []tls.Certificate{identity},
		RootCAs:      rootCAs,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     tlsConfig,
		TLSHandshakeTimeout: 15 * time.Second,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := resty.NewWithClient(&http.Client{Transport: transport}).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	if logger != nil {
		client.SetLogger(logger)
	}

	info := describeCertificate(leaf)

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"subject":   info.Subject,
			"issuer":    info.Issuer,
			"not_after": info.NotAfter,
			"base_url":  cfg.BaseURL,
		}).Info("mTLS client configured")
	}

	return &SecureClient{
		Client:      client,
		BaseURL:     cfg.BaseURL,
		Certificate: info,
	}, nil
}

// LoadIdentity decodes a base64 PKCS#12 container into a TLS certificate carrying the
// leaf and any intermediates bundled with it.
func LoadIdentity(pfxBase64, password string) (tls.Certificate, *x509.Certificate, error) {
	if strings.TrimSpace(pfxBase64) == "" {
		return tls.Certificate{}, nil, fmt.Errorf("%w: PKCS#12 certificate is empty", ErrConfiguration)
	}
	if password == "" {
		return tls.Certificate{}, nil, fmt.Errorf("%w: PKCS#12 password is empty", ErrConfiguration)
	}

	pfx, err := decodeBase64(pfxBase64)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("%w: PKCS#12 is not valid base64: %v", ErrConfiguration, err)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(pfx, password)
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("%w: decode PKCS#12: %v", ErrConfiguration, err)
	}
	if leaf == nil || key == nil {
		return tls.Certificate{}, nil, fmt.Errorf("%w: PKCS#12 has no certificate or private key", ErrConfiguration)
	}

	raw := [][]byte{leaf.Raw}
	for _, ca := range chain {
		raw = append(raw, ca.Raw)
	}

	return tls.Certificate{
		Certificate: raw,
		PrivateKey:  key,
		Leaf:        leaf,
	}, leaf, nil
}

// loadRootCAs returns the system pool, extended with the PEM bundle when one is configured.
func loadRootCAs(bundleBase64 string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if bundleBase64 == "" {
		return pool, nil
	}

	pemData, err := base64.StdEncoding.DecodeString(bundleBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: CA bundle is not valid base64: %v", ErrConfiguration, err)
	}
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("%w: CA bundle has no PEM certificates", ErrConfiguration)
	}
	return pool, nil
}

func describeCertificate(cert *x509.Certificate) *models.CertificateInfo {
	return &models.CertificateInfo{
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		SerialNumber: hex.EncodeToString(cert.SerialNumber.Bytes()),
		NotBefore:    cert.NotBefore,
		NotAfter:     cert.NotAfter,
	}
}
