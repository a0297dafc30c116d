package services

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Strategy names, also used as metric labels and in the X-NFSe-Decode-Strategy header.
const (
	StrategyGzipBase64 = "gzip+base64"
	StrategyBase64     = "base64"
	StrategyRaw        = "raw"
	StrategyNone       = "none"
)

// maxDocumentSize bounds gzip output.
const maxDocumentSize = 32 << 20

var (
	ErrEmptyPayload     = errors.New("empty payload")
	ErrInvalidBase64    = errors.New("invalid base64")
	ErrNotGzip          = errors.New("not a gzip stream")
	ErrNotXML           = errors.New("content is not XML")
	ErrDocumentTooLarge = errors.New("decompressed document too large")
)

// DecodeStrategy turns an ArquivoXml value into XML text or reports why it could not.
type DecodeStrategy interface {
	Name() string
	Decode(payload string) (string, error)
}

// Attempt records the outcome of one strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// DecodeError lists every failed attempt. It matches ErrNoValidXML.
type DecodeError struct {
	Attempts []Attempt
}

func (e *DecodeError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return fmt.Sprintf("%v (%s)", ErrNoValidXML, strings.Join(parts, "; "))
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrNoValidXML
}

// GzipBase64Strategy base64-decodes then gunzips.
type GzipBase64Strategy struct{}

func (GzipBase64Strategy) Name() string { return StrategyGzipBase64 }

func (GzipBase64Strategy) Decode(payload string) (string, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return "", err
	}
	plain, err := gunzip(raw)
	if err != nil {
		return "", err
	}
	return asXML(string(plain))
}

// Base64Strategy base64-decodes without decompression.
type Base64Strategy struct{}

func (Base64Strategy) Name() string { return StrategyBase64 }

func (Base64Strategy) Decode(payload string) (string, error) {
	raw, err := decodeBase64(payload)
	if err != nil {
		return "", err
	}
	return asXML(string(raw))
}

// RawXMLStrategy accepts the payload as it is.
type RawXMLStrategy struct{}

func (RawXMLStrategy) Name() string { return StrategyRaw }

func (RawXMLStrategy) Decode(payload string) (string, error) {
	return asXML(payload)
}

// DefaultStrategies returns the decoding order: gzip+base64, base64, raw.
func DefaultStrategies() []DecodeStrategy {
	return []DecodeStrategy{GzipBase64Strategy{}, Base64Strategy{}, RawXMLStrategy{}}
}

// DocumentDecoder runs strategies in order and stops at the first success.
type DocumentDecoder struct {
	strategies []DecodeStrategy
}

// NewDocumentDecoder builds a decoder. With no arguments the default order is used.
func NewDocumentDecoder(strategies ...DecodeStrategy) *DocumentDecoder {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &DocumentDecoder{strategies: strategies}
}

// Decode returns the XML and the name of the strategy that produced it.
// When every strategy fails the error is a *DecodeError.
func (d *DocumentDecoder) Decode(payload string) (string, string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", StrategyNone, &DecodeError{Attempts: []Attempt{{Strategy: StrategyNone, Err: ErrEmptyPayload}}}
	}

	attempts := make([]Attempt, 0, len(d.strategies))
	for _, s := range d.strategies {
		xml, err := s.Decode(payload)
		if err == nil {
			return xml, s.Name(), nil
		}
		attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
	}

	return "", StrategyNone, &DecodeError{Attempts: attempts}
}

func decodeBase64(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	if s == "" {
		return nil, ErrEmptyPayload
	}

	// StdEncoding skips CR/LF, so line-wrapped payloads decode as well
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
}

func gunzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGzip, err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGzip, err)
	}
	if n > maxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	return buf.Bytes(), nil
}

// asXML drops leading whitespace and a UTF-8 BOM and checks for an opening '<'.
func asXML(text string) (string, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n\ufeff")
	if !strings.HasPrefix(trimmed, "<") {
		return "", ErrNotXML
	}
	return trimmed, nil
}
