package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewXMLMessageFindAppHdr(t *testing.T) {
	msg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)

	appHdr, err := msg.FindAppHdr()
	require.NoError(t, err)
	require.Equal(t, tagAppHdr, appHdr.Tag)
}

func TestNewXMLMessageParseAppHdr(t *testing.T) {
	msg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)

	hdr, err := msg.ParseAppHdr()
	require.NoError(t, err)
	require.Equal(t, "MSGID00001", hdr.BizMsgIdr)
	require.Equal(t, "pacs.008.001.09", hdr.MsgDefIdr)
	require.Equal(t, "12345678901234567888", hdr.Fr.FIId.LEI)
}

func TestNewXMLMessageParseDocument(t *testing.T) {
	msg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)

	doc, err := msg.ParseDocument()
	require.NoError(t, err)
	require.Equal(t, "GRPID00001", doc.FIToFICstmrCdtTrf.GrpHdr.MsgId)
	require.Len(t, doc.FIToFICstmrCdtTrf.CdtTrfTxInf, 1)
	require.Equal(t, "E2E00001", doc.FIToFICstmrCdtTrf.CdtTrfTxInf[0].PmtId.EndToEndId)
}

func TestNewJSONMessageFindAppHdrJSON(t *testing.T) {
	msg, err := NewJSONMessage([]byte(samplePacsJSON))
	require.NoError(t, err)

	appHdr, err := msg.FindAppHdrJSON()
	require.NoError(t, err)
	require.Equal(t, "MSGID00001", appHdr["BizMsgIdr"])
}

func TestMessageCloneIsIndependentXML(t *testing.T) {
	msg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)

	clone := msg.Clone()
	appHdr, err := clone.FindAppHdr()
	require.NoError(t, err)
	appHdr.CreateElement("Extra").SetText("mutated")

	original, err := msg.FindAppHdr()
	require.NoError(t, err)
	require.Nil(t, original.SelectElement("Extra"))
}

func TestMessageCloneIsIndependentJSON(t *testing.T) {
	msg, err := NewJSONMessage([]byte(samplePacsJSON))
	require.NoError(t, err)

	clone := msg.Clone()
	appHdr, err := clone.FindAppHdrJSON()
	require.NoError(t, err)
	appHdr["Extra"] = "mutated"

	original, err := msg.FindAppHdrJSON()
	require.NoError(t, err)
	_, present := original["Extra"]
	require.False(t, present)
}

func TestFindAppHdrNotFound(t *testing.T) {
	msg, err := NewXMLMessage([]byte(`<Empty/>`))
	require.NoError(t, err)

	_, err = msg.FindAppHdr()
	require.ErrorIs(t, err, ErrAppHdrNotFound)
}
