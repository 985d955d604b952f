package isomsgsign

// SPDX-License-Identifier: MIT

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractKVPFromXML(t *testing.T) {
	msg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)

	set, err := ExtractKVP(msg)
	require.NoError(t, err)

	require.Equal(t, "MSGID00001", set["BusinessMessageIdentifier"])
	require.Equal(t, "pacs.008.001.09", set["MessageDefinitionIdentifier"])
	require.Equal(t, "GRPID00001", set["GroupHeader_MessageId"])
	require.Equal(t, "100.00", set["GroupHeader_ControlSum"])
	require.Equal(t, "E2E00001", set["Payment_EndToEndId"])
	require.Equal(t, "100.00", set["Payment_InterbankSettlementAmount_Amount"])
	require.Equal(t, "EUR", set["Payment_InterbankSettlementAmount_Currency"])
	require.Equal(t, "12345678901234567888", set["From_LEI"])
	require.Equal(t, "98765432109876543246", set["To_LEI"])

	// Structural names never surface as keys.
	_, present := set[tagAppHdr]
	require.False(t, present)
}

func TestExtractKVPFromJSON(t *testing.T) {
	msg, err := NewJSONMessage([]byte(samplePacsJSON))
	require.NoError(t, err)

	set, err := ExtractKVP(msg)
	require.NoError(t, err)

	require.Equal(t, "MSGID00001", set["BusinessMessageIdentifier"])
	require.Equal(t, "GRPID00001", set["GroupHeader_MessageId"])
	require.Equal(t, "E2E00001", set["Payment_EndToEndId"])
	require.Equal(t, "100.00", set["Payment_InterbankSettlementAmount_Amount"])
	require.Equal(t, "EUR", set["Payment_InterbankSettlementAmount_Currency"])
	require.Equal(t, "12345678901234567888", set["From_LEI"])
	require.Equal(t, "98765432109876543246", set["To_LEI"])
}

func TestExtractKVPCrossFormatEquality(t *testing.T) {
	xmlMsg, err := NewXMLMessage([]byte(samplePacsXML))
	require.NoError(t, err)
	jsonMsg, err := NewJSONMessage([]byte(samplePacsJSON))
	require.NoError(t, err)

	xmlSet, err := ExtractKVP(xmlMsg)
	require.NoError(t, err)
	jsonSet, err := ExtractKVP(jsonMsg)
	require.NoError(t, err)

	require.True(t, xmlSet.Equal(jsonSet), "expected %v to equal %v", xmlSet.Keys(), jsonSet.Keys())
}

func TestExtractKVPRejectsInvalidLEI(t *testing.T) {
	xml := `<BizMsgEnvlp><Header><AppHdr><Fr><FIId><LEI>00000000000000000000</LEI></FIId></Fr><BizMsgIdr>X</BizMsgIdr></AppHdr></Header><Body><Document/></Body></BizMsgEnvlp>`
	msg, err := NewXMLMessage([]byte(xml))
	require.NoError(t, err)

	_, err = ExtractKVP(msg)
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestKVPSetEqual(t *testing.T) {
	a := KVPSet{"x": "1", "y": "2"}
	b := KVPSet{"y": "2", "x": "1"}
	require.True(t, a.Equal(b))

	c := KVPSet{"x": "1"}
	require.False(t, a.Equal(c))
}
