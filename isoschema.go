package isomsgsign

// SPDX-License-Identifier: MIT
// Adapted from fiskal-schema.go's struct-per-wire-type, xml-tag-per-field
// shape, generalized from the Croatian fiscalization envelope to the
// head.001.001.02 AppHdr / pacs.008.001.09 Document pair this module signs.
// These types exist to give callers typed access to the canonical-key
// fields the KVP extractor (kvp.go) already names; extraction itself still
// walks the generic etree/JSON trees rather than unmarshaling into these
// structs, since a signed message may carry elements this module does not
// otherwise model.

import "encoding/xml"

// AppHdr is the head.001.001.02 Business Application Header. Only the
// fields this module's extraction, signing, and verification operations
// name are modeled; a real AppHdr carries additional optional elements that
// round-trip untouched through the etree/JSON representations Message uses.
type AppHdr struct {
	XMLName       xml.Name `xml:"AppHdr"`
	Xmlns         string   `xml:"xmlns,attr,omitempty"`
	Fr            *Party   `xml:"Fr"`
	To            *Party   `xml:"To"`
	BizMsgIdr     string   `xml:"BizMsgIdr"`
	MsgDefIdr     string   `xml:"MsgDefIdr"`
	CreDt         string   `xml:"CreDt"`
	MsgDgst       *MsgDgst `xml:"MsgDgst,omitempty"`
}

// Party models the minimal Fr/To financial-institution identification this
// module's KVP extractor reads the LEI out of.
type Party struct {
	FIId *FinancialInstitutionId `xml:"FIId"`
}

// FinancialInstitutionId carries the LEI (ISO 17442), validated by
// ValidateLEI wherever the KVP extractor pulls it out.
type FinancialInstitutionId struct {
	LEI string `xml:"LEI"`
}

// MsgDgst is the hybrid detached-hash strategy's slot (§4.5), written and
// read by HybridEmbedDigest/HybridExtractDigest.
type MsgDgst struct {
	HashAlgorithm string `xml:"HashAlgorithm"`
	HashValue     string `xml:"HashValue"`
}

// Document is the pacs.008.001.09 FIToFICstmrCdtTrf envelope.
type Document struct {
	XMLName           xml.Name          `xml:"Document"`
	Xmlns             string            `xml:"xmlns,attr,omitempty"`
	FIToFICstmrCdtTrf FIToFICstmrCdtTrf `xml:"FIToFICstmrCdtTrf"`
}

// FIToFICstmrCdtTrf is the pacs.008 message body: a single group header plus
// one or more credit transfer transaction entries.
type FIToFICstmrCdtTrf struct {
	GrpHdr       GrpHdr        `xml:"GrpHdr"`
	CdtTrfTxInf  []CdtTrfTxInf `xml:"CdtTrfTxInf"`
}

// GrpHdr carries the message-level identifiers the KVP extractor's canonical
// name table maps to GroupHeader_*.
type GrpHdr struct {
	MsgId         string            `xml:"MsgId"`
	CtrlSum       string            `xml:"CtrlSum,omitempty"`
	IntrBkSttlmDt string            `xml:"IntrBkSttlmDt,omitempty"`
}

// CdtTrfTxInf carries the per-transaction identifiers the KVP extractor's
// canonical name table maps to Payment_*.
type CdtTrfTxInf struct {
	PmtId              PaymentId           `xml:"PmtId"`
	IntrBkSttlmAmt      CurrencyAndAmount   `xml:"IntrBkSttlmAmt"`
}

// PaymentId carries the end-to-end and unique-end-to-end-transaction
// reference identifiers.
type PaymentId struct {
	EndToEndId string `xml:"EndToEndId"`
	UETR       string `xml:"UETR,omitempty"`
}

// CurrencyAndAmount models ISO 20022's ActiveCurrencyAndAmount: a decimal
// value (validated by IsValidAmountFormat) qualified by an ISO 4217
// currency code carried in the Ccy attribute.
type CurrencyAndAmount struct {
	Value string `xml:",chardata"`
	Ccy   string `xml:"Ccy,attr"`
}
