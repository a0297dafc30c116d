package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing or malformed client configuration (certificate,
	// passphrase, base URL). It is never a network error.
	ErrConfiguration = errors.New("configuration error")

	// ErrNoValidXML is returned when no decoding strategy produced XML.
	ErrNoValidXML = errors.New("no valid XML found")

	// ErrNoCandidate is returned when the envelope has no record with a non-empty ArquivoXml.
	ErrNoCandidate = fmt.Errorf("%w: no record with ArquivoXml", ErrNoValidXML)
)

// UpstreamError describes a failed call to the distribution API.
// StatusCode is zero when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	URL        string
	Body       []byte
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// InvalidEnvelopeError is returned when a 2xx upstream body is not JSON.
type InvalidEnvelopeError struct {
	URL  string
	Body []byte
	Err  error
}

func (e *InvalidEnvelopeError) Error() string {
	return fmt.Sprintf("invalid distribution envelope from %s: %v", e.URL, e.Err)
}

func (e *InvalidEnvelopeError) Unwrap() error {
	return e.Err
}

// DocumentNotFoundError carries the raw envelope when no XML could be recovered from it.
type DocumentNotFoundError struct {
	URL      string
	Envelope []byte
	Err      error
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document not found in envelope from %s: %v", e.URL, e.Err)
}

func (e *DocumentNotFoundError) Unwrap() error {
	return e.Err
}
