package models

import (
	"encoding/json"
	"strconv"
)

// Processing status values reported by the distribution API
const (
	StatusDocumentosLocalizados     = "DOCUMENTOS_LOCALIZADOS"
	StatusNenhumDocumentoLocalizado = "NENHUM_DOCUMENTO_LOCALIZADO"
	StatusRejeicao                  = "REJEICAO"
)

// DistribuicaoQuery holds the validated parameters of a distribution request
type DistribuicaoQuery struct {
	NSU          int64
	CNPJConsulta string
	Lote         bool
}

// NSUString renders the NSU the way it goes on the upstream path.
func (q DistribuicaoQuery) NSUString() string {
	return strconv.FormatInt(q.NSU, 10)
}

// DistribuicaoEnvelope is the JSON returned by GET /DFe/{nsu}
type DistribuicaoEnvelope struct {
	StatusProcessamento   string            `json:"StatusProcessamento" example:"DOCUMENTOS_LOCALIZADOS"`
	UltimoNSU             json.Number       `json:"ultimoNSU,omitempty" swaggertype:"integer" example:"42"`
	LoteDFe               []DocumentoFiscal `json:"LoteDFe"`
	TipoAmbiente          string            `json:"TipoAmbiente,omitempty" example:"PRODUCAO"`
	VersaoAplicativo      string            `json:"VersaoAplicativo,omitempty" example:"1.0.0"`
	DataHoraProcessamento string            `json:"DataHoraProcessamento,omitempty" example:"2024-01-15T10:30:00"`
	Alertas               []Mensagem        `json:"Alertas,omitempty"`
	Erros                 []Mensagem        `json:"Erros,omitempty"`
}

// DocumentoFiscal is one record of LoteDFe. ArquivoXml may be gzip+base64, base64 or raw XML.
type DocumentoFiscal struct {
	NSU             json.Number `json:"NSU,omitempty" swaggertype:"integer" example:"5"`
	ChaveAcesso     string      `json:"ChaveAcesso,omitempty" example:"21113002212345678000195000000000000124010000000001"`
	TipoDocumento   string      `json:"TipoDocumento,omitempty" example:"NFSE"`
	TipoEvento      string      `json:"TipoEvento,omitempty"`
	DataHoraGeracao string      `json:"DataHoraGeracao,omitempty" example:"2024-01-15T10:30:00"`
	ArquivoXml      string      `json:"ArquivoXml,omitempty" example:"H4sIAAAAAAAA/7PJS8wtTrVTsuEFAA8n7eYMAAAA"`
}

// Mensagem is an alert or error entry of the envelope
type Mensagem struct {
	Codigo      string `json:"Codigo,omitempty" example:"E001"`
	Descricao   string `json:"Descricao,omitempty"`
	Complemento string `json:"Complemento,omitempty"`
}
