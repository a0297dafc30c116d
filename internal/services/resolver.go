package services

import (
	"strings"

	"github.com/nexconsult/nfse-gateway/internal/models"
)

// Document is an XML document recovered from a distribution envelope.
type Document struct {
	XML      string
	Strategy string
	Record   models.DocumentoFiscal
	Index    int
}

// SelectCandidate returns the first record whose ArquivoXml is not blank.
// The envelope is only read.
func SelectCandidate(envelope *models.DistribuicaoEnvelope) (models.DocumentoFiscal, int, bool) {
	if envelope == nil {
		return models.DocumentoFiscal{}, -1, false
	}
	for i, record := range envelope.LoteDFe {
		if strings.TrimSpace(record.ArquivoXml) != "" {
			return record, i, true
		}
	}
	return models.DocumentoFiscal{}, -1, false
}

// Resolve decodes the candidate record of the envelope. Only the first candidate is tried:
// when its payload cannot be decoded the result is a miss even if later records exist.
func (d *DocumentDecoder) Resolve(envelope *models.DistribuicaoEnvelope) (*Document, error) {
	record, index, ok := SelectCandidate(envelope)
	if !ok {
		return nil, ErrNoCandidate
	}

	xml, strategy, err := d.Decode(record.ArquivoXml)
	if err != nil {
		return nil, err
	}

	return &Document{
		XML:      xml,
		Strategy: strategy,
		Record:   record,
		Index:    index,
	}, nil
}
