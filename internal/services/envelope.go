package services

import (
	"encoding/json"
	"errors"

	"github.com/nexconsult/nfse-gateway/internal/models"
)

var errNotJSON = errors.New("upstream body is not JSON")

// envelopeFields holds every top-level field as raw JSON so a type mismatch in one of
// them never fails the whole envelope.
type envelopeFields struct {
	StatusProcessamento json.RawMessage `json:"StatusProcessamento"`
	UltimoNSU           json.RawMessage `json:"ultimoNSU"`
	LoteDFe             json.RawMessage `json:"LoteDFe"`
}

type recordFields struct {
	NSU             json.RawMessage `json:"NSU"`
	ChaveAcesso     json.RawMessage `json:"ChaveAcesso"`
	TipoDocumento   json.RawMessage `json:"TipoDocumento"`
	TipoEvento      json.RawMessage `json:"TipoEvento"`
	DataHoraGeracao json.RawMessage `json:"DataHoraGeracao"`
	ArquivoXml      json.RawMessage `json:"ArquivoXml"`
}

// ParseEnvelope reads the parts of a distribution envelope the resolver needs.
// It fails only when body is not JSON. Fields of the wrong type read as empty,
// and a record that is not an object keeps its position with no payload.
func ParseEnvelope(body []byte) (*models.DistribuicaoEnvelope, error) {
	if !json.Valid(body) {
		return nil, errNotJSON
	}

	envelope := &models.DistribuicaoEnvelope{}

	var fields envelopeFields
	if err := json.Unmarshal(body, &fields); err != nil {
		return envelope, nil
	}
	envelope.StatusProcessamento = rawString(fields.StatusProcessamento)
	envelope.UltimoNSU = rawNumber(fields.UltimoNSU)

	var records []json.RawMessage
	if err := json.Unmarshal(fields.LoteDFe, &records); err != nil {
		return envelope, nil
	}

	envelope.LoteDFe = make([]models.DocumentoFiscal, len(records))
	for i, raw := range records {
		var record recordFields
		if err := json.Unmarshal(raw, &record); err != nil {
			continue
		}
		envelope.LoteDFe[i] = models.DocumentoFiscal{
			NSU:             rawNumber(record.NSU),
			ChaveAcesso:     rawString(record.ChaveAcesso),
			TipoDocumento:   rawString(record.TipoDocumento),
			TipoEvento:      rawString(record.TipoEvento),
			DataHoraGeracao: rawString(record.DataHoraGeracao),
			ArquivoXml:      rawString(record.ArquivoXml),
		}
	}

	return envelope, nil
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawNumber accepts a JSON number or a string holding one
func rawNumber(raw json.RawMessage) json.Number {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n
}
